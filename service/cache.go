// file: service/cache.go

package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient is the subset of the Redis client the revocation ledger uses
// for its read-through markers. *redis.Client satisfies it.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}
