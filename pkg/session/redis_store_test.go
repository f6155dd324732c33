package session_test

import (
	"context"
	"os"
	"testing"

	"courseadmin/pkg/session"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	store := session.NewRedisStore(client, "test:"+uuid.NewString()+":")

	v, err := store.Get(ctx, session.AccessTokenKey)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, store.Set(ctx, session.AccessTokenKey, "a"))
	v, err = store.Get(ctx, session.AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	require.NoError(t, store.Delete(ctx, session.AccessTokenKey))
	require.NoError(t, store.Delete(ctx, session.AccessTokenKey))
	v, err = store.Get(ctx, session.AccessTokenKey)
	require.NoError(t, err)
	assert.Empty(t, v)

	t.Run("manager over redis", func(t *testing.T) {
		m := session.NewManager(store, logger)
		require.NoError(t, m.Initialize(ctx))
		require.NoError(t, m.Login(ctx, "access", "refresh"))

		restarted := session.NewManager(store, logger)
		require.NoError(t, restarted.Initialize(ctx))
		assert.Equal(t, session.StateAuthenticated, restarted.State())

		require.NoError(t, restarted.Logout(ctx))
	})
}
