package ports

import (
	"context"

	"github.com/frusal/deploy-my-schema/pkg/domain"
)

// WorkspaceStore persists workspace snapshots.
// This is the wire boundary to the workspace service; adapters may be local or remote.
type WorkspaceStore interface {
	// Load retrieves the latest snapshot of a workspace.
	// Returns domain.ErrWorkspaceNotFound if the workspace does not exist.
	Load(ctx context.Context, name string) (*domain.Snapshot, error)

	// Commit stores snap if the stored version still equals snap.Version and returns the
	// new version. A snapshot with Version 0 creates the workspace.
	// Returns domain.ErrConflict when the stored version moved on (or already exists),
	// and domain.ErrWorkspaceNotFound when a non-zero version targets a missing workspace.
	Commit(ctx context.Context, snap *domain.Snapshot) (int64, error)

	// Delete removes a workspace. Deleting a missing workspace is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored workspaces.
	List(ctx context.Context) ([]string, error)
}
