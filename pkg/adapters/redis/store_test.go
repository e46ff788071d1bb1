package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/frusal/deploy-my-schema/pkg/adapters/redis"
	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunWorkspaceStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	_, err := store.Commit(ctx, domain.NewSnapshot("shop"))
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:shop"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app"), "Expected index with custom prefix to exist")

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"shop"}, names)
}

func TestRedisStore_WorkspaceNamedLikeIndex(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app"))
	ctx := context.Background()

	for _, name := range []string{"shop", "index"} {
		_, err := store.Commit(ctx, domain.NewSnapshot(name))
		require.NoError(t, err)
	}

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"index", "shop"}, names)

	snap, err := store.Load(ctx, "index")
	require.NoError(t, err)
	assert.Equal(t, "index", snap.Name)
	assert.True(t, mr.Exists("custom:app:index"))
}

func TestRedisStore_SharedBetweenClients(t *testing.T) {
	mr, client := newClient(t)
	other := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer other.Close()

	a := redis.NewFromClient(client)
	b := redis.NewFromClient(other)
	ctx := context.Background()

	_, err := a.Commit(ctx, domain.NewSnapshot("shop"))
	require.NoError(t, err)

	fromA, err := a.Load(ctx, "shop")
	require.NoError(t, err)
	fromB, err := b.Load(ctx, "shop")
	require.NoError(t, err)

	_, err = b.Commit(ctx, fromB)
	require.NoError(t, err)

	_, err = a.Commit(ctx, fromA)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRedisStore_Corrupted(t *testing.T) {
	mr, client := newClient(t)
	require.NoError(t, mr.Set("frusal:workspace:shop", "not json"))

	_, err := redis.NewFromClient(client).Load(context.Background(), "shop")
	assert.ErrorContains(t, err, "failed to unmarshal workspace")
}
