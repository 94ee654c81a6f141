package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis key guarding sync runs.
const DefaultKey = "canvas-notion-sync:run"

// releaseScript deletes the key only if it still holds our token, so a run
// that outlived its TTL cannot free a newer run's lock.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// redisClient is the subset of *redis.Client the lock uses.
type redisClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// Redis is a lock shared by every process pointed at the same Redis. The
// key expires after TTL in case the holder dies.
type Redis struct {
	client redisClient
	key    string
	ttl    time.Duration
}

var _ Locker = (*Redis)(nil)

func NewRedis(client *redis.Client, key string, ttl time.Duration) *Redis {
	return newRedis(client, key, ttl)
}

func newRedis(client redisClient, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = DefaultKey
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Redis{client: client, key: key, ttl: ttl}
}

func (r *Redis) TryAcquire(ctx context.Context) (Release, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("runlock: redis set %s: %w", r.key, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func(ctx context.Context) error {
		err := r.client.Eval(ctx, releaseScript, []string{r.key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("runlock: redis release %s: %w", r.key, err)
		}
		return nil
	}, nil
}
