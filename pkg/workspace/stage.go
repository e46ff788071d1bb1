package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/frusal/deploy-my-schema/pkg/domain"
)

// Stage is a scoped view of a workspace. Transactions run against the stage's snapshot
// and advance it when they commit. A stage runs one transaction at a time: starting
// another one while a transaction is open, from inside it or from another goroutine,
// fails with domain.ErrStageBusy.
type Stage struct {
	ws *Workspace

	mu     sync.Mutex
	snap   *domain.Snapshot
	closed bool
	busy   bool
}

// Version returns the snapshot version the next transaction will be based on.
func (s *Stage) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Version
}

func (s *Stage) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.ws.logger.Debug("Stage released", "version", s.snap.Version)
}

// Transact runs fn inside an atomic transaction.
// Either every change made through the Tx is committed, or none is.
func (s *Stage) Transact(ctx context.Context, fn func(*Tx) error) error {
	_, err := Query(ctx, s, func(tx *Tx) (struct{}, error) {
		return struct{}{}, fn(tx)
	})
	return err
}

// Query is Transact for functions that produce a value.
func Query[T any](ctx context.Context, s *Stage, fn func(*Tx) (T, error)) (T, error) {
	var result T

	if err := s.begin(); err != nil {
		return result, err
	}
	defer s.end()

	ws := s.ws
	err := ws.svc.locks.withLock(ctx, ws.name, func(ctx context.Context) error {
		s.mu.Lock()
		closed, base := s.closed, s.snap
		s.mu.Unlock()
		if closed {
			return domain.ErrStageClosed
		}

		tx := newTx(base)
		defer tx.close()

		out, err := fn(tx)
		if err != nil {
			return err
		}
		if !tx.dirty {
			result = out
			return nil
		}

		if err := tx.Check(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		version, err := ws.svc.store.Commit(ctx, tx.snap)
		if err != nil {
			return fmt.Errorf("failed to commit to workspace %q: %w", ws.name, err)
		}
		tx.snap.Version = version

		s.mu.Lock()
		s.snap = tx.snap
		s.mu.Unlock()

		ws.logger.Debug("Transaction committed", "version", version, "entities", len(tx.snap.Entities))
		result = out
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// begin marks the stage busy. It is checked before the workspace lock is taken, so a
// transaction started from inside another one fails instead of waiting on itself.
func (s *Stage) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return domain.ErrStageClosed
	case s.busy:
		return domain.ErrStageBusy
	}
	s.busy = true
	return nil
}

func (s *Stage) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}
