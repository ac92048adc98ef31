package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus is the latest probe snapshot of the stores the scheduling
// engine depends on: mongo for appointments, the availability cache, the
// booking-lock store and the reminder task queue.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Cache     bool      `json:"cache"`
	Locks     bool      `json:"locks"`
	Queue     bool      `json:"queue"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Healthy reports whether every dependency answered its last probe.
func (h HealthStatus) Healthy() bool {
	return h.Mongo && h.Cache && h.Locks && h.Queue
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

func pingRedis(ctx context.Context, client *redis.Client) bool {
	if client == nil {
		return false
	}
	return client.Ping(ctx).Err() == nil
}

// StartHealthMonitor probes the backing stores once a minute and keeps the
// snapshot behind the health endpoint current. Booking locks and the task
// queue live in their own redis databases, so each is reported separately
// from the advisory cache.
func StartHealthMonitor(mongoClient *mongo.Client, cache, lock, queue *redis.Client) {
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			snapshot := HealthStatus{
				Mongo:     mongoClient != nil && mongoClient.Ping(ctx, nil) == nil,
				Cache:     pingRedis(ctx, cache),
				Locks:     pingRedis(ctx, lock),
				Queue:     pingRedis(ctx, queue),
				CheckedAt: time.Now(),
			}
			cancel()

			if !snapshot.Healthy() {
				GetLogger().Sugar().Warnf("health probe degraded: mongo=%t cache=%t locks=%t queue=%t",
					snapshot.Mongo, snapshot.Cache, snapshot.Locks, snapshot.Queue)
			}

			healthMu.Lock()
			currentHealth = snapshot
			healthMu.Unlock()
		}
	}()
}
