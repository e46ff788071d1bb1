package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/frusal/deploy-my-schema/pkg/domain"
)

// Store implements ports.WorkspaceStore using the local filesystem.
// It stores each workspace snapshot as a JSON file in a configured directory.
//
// Commits are atomic per file. The version check is serialized within one process;
// use a distributed locker to coordinate several processes sharing a directory.
type Store struct {
	BasePath string

	mu sync.Mutex
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".frusal/workspaces".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".frusal", "workspaces")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.BasePath, name+".json")
}

func validName(name string) error {
	if name == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid workspace name %q", name)
	}
	return nil
}

// Load reads the workspace snapshot from its JSON file.
func (s *Store) Load(ctx context.Context, name string) (*domain.Snapshot, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	return s.read(name)
}

func (s *Store) read(name string) (*domain.Snapshot, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to read workspace file: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workspace %q: %w", name, err)
	}
	if snap.Members == nil {
		snap.Members = make(map[string]string)
	}
	if snap.Entities == nil {
		snap.Entities = make(map[domain.ID]*domain.Entity)
	}
	return &snap, nil
}

// Commit writes snap if its version matches the stored one.
func (s *Store) Commit(ctx context.Context, snap *domain.Snapshot) (int64, error) {
	if err := validName(snap.Name); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(snap.Name)
	switch {
	case errors.Is(err, domain.ErrWorkspaceNotFound):
		if snap.Version != 0 {
			return 0, err
		}
	case err != nil:
		return 0, err
	case current.Version != snap.Version:
		return 0, domain.ErrConflict
	}

	next := *snap
	next.Version = snap.Version + 1
	data, err := json.MarshalIndent(&next, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal workspace: %w", err)
	}
	if err := writeAtomic(s.BasePath, s.path(snap.Name), data, 0o644); err != nil {
		return 0, err
	}
	return next.Version, nil
}

// Delete removes the workspace file.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete workspace file: %w", err)
	}
	return nil
}

// List returns the names of all stored workspaces, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	slices.Sort(names)
	return names, nil
}

// writeAtomic writes data to a temp file in dir, syncs it, and renames it over dest.
func writeAtomic(dir, dest string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(dest)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := tmpFile.Chmod(perm); err != nil {
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
