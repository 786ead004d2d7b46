package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func TestRedisImportLock(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire waits for release", func(t *testing.T) {
		_, client := newTestRedis(t)
		lock := NewRedisImportLock(client, time.Minute)
		userID := uuid.New()

		release, err := lock.Acquire(ctx, userID)
		require.NoError(t, err)

		_, err = lock.Acquire(ctx, userID)
		assert.ErrorIs(t, err, domainerror.ErrImportInProgress)

		// other users are not affected
		releaseOther, err := lock.Acquire(ctx, uuid.New())
		require.NoError(t, err)
		releaseOther()

		release()

		again, err := lock.Acquire(ctx, userID)
		require.NoError(t, err)
		again()
	})

	t.Run("lock expires after ttl", func(t *testing.T) {
		server, client := newTestRedis(t)
		lock := NewRedisImportLock(client, time.Second)
		userID := uuid.New()

		_, err := lock.Acquire(ctx, userID)
		require.NoError(t, err)

		server.FastForward(2 * time.Second)

		_, err = lock.Acquire(ctx, userID)
		assert.NoError(t, err)
	})

	t.Run("stale release keeps the new holder's lock", func(t *testing.T) {
		server, client := newTestRedis(t)
		lock := NewRedisImportLock(client, time.Second)
		userID := uuid.New()

		staleRelease, err := lock.Acquire(ctx, userID)
		require.NoError(t, err)
		server.FastForward(2 * time.Second)

		_, err = lock.Acquire(ctx, userID)
		require.NoError(t, err)

		staleRelease()

		assert.True(t, server.Exists(importLockPrefix+userID.String()))
	})

	t.Run("unreachable redis is an error, not a conflict", func(t *testing.T) {
		server, client := newTestRedis(t)
		lock := NewRedisImportLock(client, time.Minute)
		server.Close()

		_, err := lock.Acquire(ctx, uuid.New())

		require.Error(t, err)
		assert.NotErrorIs(t, err, domainerror.ErrImportInProgress)
	})
}

func TestNoopImportLock(t *testing.T) {
	release, err := NoopImportLock{}.Acquire(context.Background(), uuid.New())

	require.NoError(t, err)
	release()
}
