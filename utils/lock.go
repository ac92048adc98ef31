package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript deletes the lock key only when it still holds our token.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

// ErrLockHeld is returned when the lock is currently held by another owner.
var ErrLockHeld = fmt.Errorf("lock already held")

// ResourceLock is a short-lived exclusive lease on a redis key.
type ResourceLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

// Locker hands out resource locks backed by a redis client.
type Locker struct {
	Client *redis.Client
}

// Acquire attempts to take the lock once; it does not block.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*ResourceLock, error) {
	token := uuid.New().String()
	ok, err := l.Client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &ResourceLock{client: l.Client, key: key, token: token, ttl: ttl}, nil
}

// Release frees the lock if this holder still owns it.
func (rl *ResourceLock) Release(ctx context.Context) error {
	res, err := rl.client.Eval(ctx, releaseScript, []string{rl.key}, rl.token).Result()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", rl.key, err)
	}
	if n, ok := res.(int64); ok && n == 0 {
		return fmt.Errorf("lock %s expired before release", rl.key)
	}
	return nil
}
