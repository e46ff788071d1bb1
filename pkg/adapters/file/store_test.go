package file_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/frusal/deploy-my-schema/pkg/adapters/file"
	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunWorkspaceStoreContract(t, file.New(t.TempDir()))
}

func TestFileCredentials_Contract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")
	ports.RunCredentialStoreContract(t, file.NewCredentials(path))
}

func TestFileStore_AtomicWrite(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	_, err := store.Commit(ctx, domain.NewSnapshot("shop"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "shop.json", entries[0].Name())

	// A temp file from a crashed write is not a workspace.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-shop.json-123"), []byte("{"), 0o644))
	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"shop"}, names)
}

func TestFileStore_Corrupted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop.json"), []byte("not json"), 0o644))

	_, err := file.New(dir).Load(context.Background(), "shop")
	assert.ErrorContains(t, err, "failed to unmarshal workspace")
}

func TestFileStore_RejectsPathNames(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"", "..", "../escape", `a\b`} {
		_, err := store.Load(ctx, name)
		assert.Error(t, err, name)
		_, err = store.Commit(ctx, domain.NewSnapshot(name))
		assert.Error(t, err, name)
	}
}

func TestFileCredentials_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	creds := file.NewCredentials(path)

	require.NoError(t, creds.Save(context.Background(), &domain.Credential{User: "ada", Token: "s3cret"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "user: ada")
}
