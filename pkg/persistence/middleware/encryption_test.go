package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/frusal/deploy-my-schema/pkg/adapters/memory"
	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/persistence/middleware"
	"github.com/frusal/deploy-my-schema/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.WorkspaceStore, active []byte, fallback ...[]byte) ports.WorkspaceStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
	require.NoError(t, err)
	return mw(next)
}

func secretSnapshot() *domain.Snapshot {
	snap := domain.NewSnapshot("shop")
	snap.Members["ada"] = "hash"
	e := domain.NewEntity("p1", "class-product")
	e.PutString("name", "my-secret-sauce")
	snap.Entities[e.ID] = e
	return snap
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunWorkspaceStoreContract(t, encrypted(t, memory.NewStore(), generateKey(t)))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, generateKey(t))
	ctx := context.Background()

	version, err := secure.Commit(ctx, secretSnapshot())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// The backend only sees the envelope.
	stored, err := underlying.Load(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	assert.Equal(t, "hash", stored.Members["ada"])
	assert.NotContains(t, stored.Entities, domain.ID("p1"))
	require.Len(t, stored.Entities, 1)
	for _, e := range stored.Entities {
		assert.NotContains(t, e.Strings["payload"], "my-secret-sauce")
	}

	loaded, err := secure.Load(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Version)
	require.Contains(t, loaded.Entities, domain.ID("p1"))
	assert.Equal(t, "my-secret-sauce", loaded.Entities["p1"].Strings["name"])
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureOld := encrypted(t, underlying, oldKey)
	_, err := secureOld.Commit(ctx, secretSnapshot())
	require.NoError(t, err)

	secureNew := encrypted(t, underlying, newKey, oldKey)
	loaded, err := secureNew.Load(ctx, "shop")
	require.NoError(t, err, "fallback key must decrypt")

	loaded.Entities["p1"].PutString("name", "encrypted-with-new-key")
	_, err = secureNew.Commit(ctx, loaded)
	require.NoError(t, err)

	_, err = secureOld.Load(ctx, "shop")
	assert.Error(t, err, "old key alone must not decrypt new data")
}

func TestEncryptionMiddleware_RejectsPlainSnapshot(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	_, err := underlying.Commit(ctx, secretSnapshot())
	require.NoError(t, err)

	_, err = encrypted(t, underlying, generateKey(t)).Load(ctx, "shop")
	assert.ErrorContains(t, err, "missing encrypted data envelope")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)
}

func TestChain_OutermostFirst(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.WorkspaceStore) ports.WorkspaceStore {
			order = append(order, name)
			return next
		}
	}
	middleware.Chain(memory.NewStore(), tag("outer"), tag("inner"))
	assert.Equal(t, []string{"inner", "outer"}, order)
}
