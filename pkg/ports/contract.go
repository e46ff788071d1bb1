package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractSnapshot(name string) *domain.Snapshot {
	snap := domain.NewSnapshot(name)
	e := domain.NewEntity("e1", domain.ModuleClassID)
	e.PutString("name", "Main")
	e.PutBool("system", false)
	e.Append("classes", "c1")
	snap.Entities[e.ID] = e
	snap.Members["alice"] = "hash"
	return snap
}

// RunWorkspaceStoreContract runs a suite of tests to verify that a WorkspaceStore
// implementation adheres to the defined interface contract.
func RunWorkspaceStoreContract(t *testing.T, store WorkspaceStore) {
	ctx := context.Background()
	name := fmt.Sprintf("contract-%d", time.Now().UnixNano())

	t.Run("Load Missing", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+name)
		assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound)
	})

	t.Run("Create and Load", func(t *testing.T) {
		version, err := store.Commit(ctx, contractSnapshot(name))
		require.NoError(t, err, "first commit should create the workspace")
		assert.Equal(t, int64(1), version)

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, name, loaded.Name)
		assert.Equal(t, int64(1), loaded.Version)
		require.Contains(t, loaded.Entities, domain.ID("e1"))
		assert.Equal(t, "Main", loaded.Entities["e1"].Strings["name"])
		assert.Equal(t, []domain.ID{"c1"}, loaded.Entities["e1"].Lists["classes"])
		assert.Equal(t, "hash", loaded.Members["alice"])
	})

	t.Run("Create Twice Conflicts", func(t *testing.T) {
		_, err := store.Commit(ctx, contractSnapshot(name))
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Commit Bumps Version", func(t *testing.T) {
		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)

		loaded.Entities["e1"].PutString("name", "Renamed")
		version, err := store.Commit(ctx, loaded)
		require.NoError(t, err)
		assert.Equal(t, loaded.Version+1, version)

		reloaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, version, reloaded.Version)
		assert.Equal(t, "Renamed", reloaded.Entities["e1"].Strings["name"])
	})

	t.Run("Stale Commit Conflicts", func(t *testing.T) {
		stale, err := store.Load(ctx, name)
		require.NoError(t, err)

		fresh := stale.Clone()
		_, err = store.Commit(ctx, fresh)
		require.NoError(t, err)

		stale.Entities["e1"].PutString("name", "Lost update")
		_, err = store.Commit(ctx, stale)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("List", func(t *testing.T) {
		other := name + "-other"
		_, err := store.Commit(ctx, contractSnapshot(other))
		require.NoError(t, err)
		defer func() { _ = store.Delete(ctx, other) }()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, name)
		assert.Contains(t, names, other)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, name))

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound, "Load after Delete should return ErrWorkspaceNotFound")

		assert.NoError(t, store.Delete(ctx, name), "deleting twice is not an error")
	})
}

// RunCredentialStoreContract verifies a CredentialStore implementation.
func RunCredentialStoreContract(t *testing.T, store CredentialStore) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrNoCredential)
	})

	t.Run("Save and Load", func(t *testing.T) {
		cred := &domain.Credential{User: "alice", Token: "s3cret", Endpoint: "http://localhost:8080"}
		require.NoError(t, store.Save(ctx, cred))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, *cred, *loaded)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx))

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrNoCredential)
		assert.NoError(t, store.Delete(ctx))
	})
}
