package scheduling

import (
	"context"
	"fmt"
	"time"

	"voltserve/utils"
)

// LockHandle is a held slot lock.
type LockHandle interface {
	Release(ctx context.Context) error
}

// SlotLocker serializes booking commits per (center, date) key.
type SlotLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (LockHandle, error)
}

// RedisSlotLocker adapts the redis lease lock to the SlotLocker interface.
type RedisSlotLocker struct {
	Locker *utils.Locker
}

func (l *RedisSlotLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (LockHandle, error) {
	return l.Locker.Acquire(ctx, key, ttl)
}

// bookingLockKey scopes the commit critical section. Every commit touching a
// center day serializes on the same key: the bay-capacity count and the
// per-technician exclusivity check both read the whole day's reservation set,
// so two commits under disjoint keys could each pass their re-check and both
// write.
func bookingLockKey(centerID, date string) string {
	return fmt.Sprintf("lock:booking:%s:%s", centerID, date)
}
