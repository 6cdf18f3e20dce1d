package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so a
// holder whose lease expired cannot release somebody else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type LockRepository struct {
	client *redis.Client
}

func NewLockRepository(client *redis.Client) *LockRepository {
	return &LockRepository{
		client: client,
	}
}

// Acquire takes the named lease for ttl. It returns false when another holder
// owns it.
func (r *LockRepository) Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:%s", name)

	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}

	return ok, nil
}

func (r *LockRepository) Release(ctx context.Context, name, token string) error {
	key := fmt.Sprintf("lock:%s", name)

	if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock %s: %w", name, err)
	}

	return nil
}
