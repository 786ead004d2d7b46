package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/budget-sync/internal/application/adapter"
	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
)

const importLockPrefix = "import-lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another import is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisImportLock serializes imports per user with SET NX PX.
type RedisImportLock struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ adapter.ImportLock = (*RedisImportLock)(nil)

// NewRedisImportLock creates a lock whose keys expire after ttl.
func NewRedisImportLock(client redis.UniversalClient, ttl time.Duration) *RedisImportLock {
	return &RedisImportLock{
		client: client,
		ttl:    ttl,
	}
}

// Acquire takes the user's lock or returns domainerror.ErrImportInProgress.
func (l *RedisImportLock) Acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	key := importLockPrefix + userID.String()
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire import lock: %w", err)
	}
	if !ok {
		return nil, domainerror.ErrImportInProgress
	}

	release := func() {
		// The request context may already be cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			slog.Warn("Failed to release import lock", "userID", userID, "error", err)
		}
	}
	return release, nil
}

// NoopImportLock never blocks. Used when Redis is not configured.
type NoopImportLock struct{}

var _ adapter.ImportLock = NoopImportLock{}

// Acquire always succeeds.
func (NoopImportLock) Acquire(context.Context, uuid.UUID) (func(), error) {
	return func() {}, nil
}
