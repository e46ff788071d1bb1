package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/frusal/deploy-my-schema/pkg/domain"
)

// Store implements ports.WorkspaceStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Snapshot),
	}
}

// Load returns a copy of the stored snapshot so callers can't mutate it by pointer.
func (s *Store) Load(ctx context.Context, name string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[name]
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	return snap.Clone(), nil
}

// Commit stores a copy of snap if its version matches the stored one.
func (s *Store) Commit(ctx context.Context, snap *domain.Snapshot) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.data[snap.Name]
	switch {
	case !exists && snap.Version != 0:
		return 0, domain.ErrWorkspaceNotFound
	case exists && stored.Version != snap.Version:
		return 0, domain.ErrConflict
	}

	copied := snap.Clone()
	copied.Version = snap.Version + 1
	s.data[snap.Name] = copied
	return copied.Version, nil
}

// Delete removes the workspace.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns stored workspace names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
