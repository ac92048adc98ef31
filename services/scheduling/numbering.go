package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// Sequencer hands out the per-center daily appointment sequence.
type Sequencer interface {
	Next(ctx context.Context, centerID, date string) (int, error)
}

// RedisSequencer implements Sequencer with INCR on a key that expires after
// the day has passed, resetting the sequence daily per center.
type RedisSequencer struct {
	Client *redis.Client
}

func (s *RedisSequencer) Next(ctx context.Context, centerID, date string) (int, error) {
	key := fmt.Sprintf("aptseq:%s:%s", centerID, date)
	n, err := s.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to advance appointment sequence %s: %w", key, err)
	}
	// First increment of the day sets the expiry window.
	if n == 1 {
		s.Client.Expire(ctx, key, 48*time.Hour)
	}
	return int(n), nil
}

// formatAppointmentNumber renders APT-YYYYMMDD-NNN.
func formatAppointmentNumber(date string, seq int) string {
	compact := strings.ReplaceAll(date, "-", "")
	return fmt.Sprintf("APT-%s-%03d", compact, seq)
}
