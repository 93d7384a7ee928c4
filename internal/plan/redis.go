package plan

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mesalabs/mesa/internal/common/cnst"
	"github.com/mesalabs/mesa/internal/ids"
)

// incrementScript performs the limit check and the increment as one
// atomic server-side operation. Returns the new value, or -1 when the
// increment would exceed the limit.
var incrementScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local amount = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
if limit >= 0 and current + amount > limit then
    return -1
end
return redis.call('INCRBY', KEYS[1], amount)
`)

// RedisUsageStore implements UsageStore on Redis, for deployments where
// counters are shared across apiserver replicas.
type RedisUsageStore struct {
	client *redis.Client
	prefix string
}

// NewRedisUsageStore creates a usage store over a Redis connection.
func NewRedisUsageStore(addr, password string, db int, prefix string) (*RedisUsageStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if prefix == "" {
		prefix = "mesa"
	}
	return &RedisUsageStore{client: client, prefix: prefix}, nil
}

func (s *RedisUsageStore) key(tenantID ids.TenantID, key string) string {
	return fmt.Sprintf("%s:usage:%s:%s", s.prefix, tenantID.String(), key)
}

func (s *RedisUsageStore) IncrementWithLimit(ctx context.Context, tenantID ids.TenantID, key string, amount, limit int64) error {
	result, err := incrementScript.Run(ctx, s.client, []string{s.key(tenantID, key)}, amount, limit).Int64()
	if err != nil {
		return err
	}
	if result < 0 {
		return cnst.ErrPlanLimitExceeded
	}
	return nil
}

func (s *RedisUsageStore) Get(ctx context.Context, tenantID ids.TenantID, key string) (int64, error) {
	val, err := s.client.Get(ctx, s.key(tenantID, key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}
