package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frusal/deploy-my-schema/pkg/ports"
)

// lockEntry holds a one-slot semaphore and the reference count.
// The semaphore is a channel so that waiting for it can be abandoned when ctx is done.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

// lockSet serializes commits per workspace.
// It uses reference counting to garbage collect unused locks.
type lockSet struct {
	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker // optional, spans processes
	ttl    time.Duration
	logger *slog.Logger
}

func newLockSet() *lockSet {
	return &lockSet{
		locks: make(map[string]*lockEntry),
		ttl:   30 * time.Second,
	}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST call release(key) once it no longer holds or waits for entry.sem.
func (l *lockSet) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[key]
	if !exists {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (l *lockSet) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, key)
	}
}

// withLock executes fn while holding the lock for key.
// Waiting for the lock ends with ctx.Err() when ctx is done first.
func (l *lockSet) withLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := l.acquire(key)
	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key)
		return fmt.Errorf("waiting for lock on %q: %w", key, ctx.Err())
	}
	defer func() {
		<-entry.sem
		l.release(key)
	}()

	if l.locker != nil {
		unlock, err := l.locker.Lock(ctx, key, l.ttl)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				l.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"workspace", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
