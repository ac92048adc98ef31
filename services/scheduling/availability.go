package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"voltserve/models"
	"voltserve/utils"
)

// ComputeSlots produces the slot grid for a center, date and total service
// duration. Slots spilling past closing time are still emitted, flagged
// requiresApproval, so clients can offer them for explicit approval.
func (se *DefaultSchedulingEngine) ComputeSlots(ctx context.Context, centerID, date string, durationMin, granularityMin int) ([]models.TimeSlot, error) {
	if durationMin <= 0 {
		return nil, newValidationError("duration", "duration must be positive, got %d", durationMin)
	}
	if _, err := utils.ParseDate(date); err != nil {
		return nil, newValidationError("date", "%v", err)
	}
	if granularityMin <= 0 {
		granularityMin = se.Policy.GranularityMin
	}

	cacheKey := fmt.Sprintf("avail:%s:%s:%d:%d", centerID, date, durationMin, granularityMin)
	if slots, ok := se.cachedSlots(ctx, cacheKey); ok {
		return slots, nil
	}

	center, err := se.Centers.GetByID(centerID)
	if err != nil {
		return nil, fmt.Errorf("compute slots: %w", err)
	}

	// One fetch of the day's reservation projection; per-slot counting is
	// done in memory.
	reserved, err := se.Appointments.FindOverlapping(centerID, date, 0, 24*60)
	if err != nil {
		return nil, fmt.Errorf("compute slots: %w", err)
	}

	now := se.now().In(center.Location())
	nowMinute := -1
	today := now.Format(utils.DateLayout)
	switch {
	case date < today:
		nowMinute = 24 * 60 // whole day in the past
	case date == today:
		nowMinute = now.Hour()*60 + now.Minute()
	}

	var slots []models.TimeSlot
	for start := center.OpenMinute; start < center.CloseMinute; start += granularityMin {
		end := start + durationMin

		slot := models.TimeSlot{
			Time:      utils.FormatClockMinutes(start),
			Start:     start,
			Available: true,
		}

		for i := range reserved {
			if reserved[i].Overlaps(date, start, end) {
				slot.ConflictCount++
			}
		}
		if center.BayCount > 0 && slot.ConflictCount >= center.BayCount {
			slot.Available = false
		}

		if end > center.CloseMinute {
			if se.Policy.AllowSpillover {
				slot.RequiresApproval = true
			} else {
				slot.Available = false
			}
		}

		// Past slots are never bookable, whatever the conflict state.
		if start < nowMinute {
			slot.Available = false
		}

		slots = append(slots, slot)
	}

	se.cacheSlots(ctx, cacheKey, slots)
	return slots, nil
}

func (se *DefaultSchedulingEngine) cachedSlots(ctx context.Context, key string) ([]models.TimeSlot, bool) {
	if se.Cache == nil {
		return nil, false
	}
	cached, err := se.Cache.Get(ctx, key).Result()
	if err != nil || cached == "" {
		return nil, false
	}
	var slots []models.TimeSlot
	if err := json.Unmarshal([]byte(cached), &slots); err != nil {
		return nil, false
	}
	// Start is not serialized; restore it from the clock string.
	for i := range slots {
		if start, err := utils.ParseClockMinutes(slots[i].Time); err == nil {
			slots[i].Start = start
		}
	}
	return slots, true
}

func (se *DefaultSchedulingEngine) cacheSlots(ctx context.Context, key string, slots []models.TimeSlot) {
	if se.Cache == nil {
		return
	}
	ttl := se.Policy.AvailabilityCacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if data, err := json.Marshal(slots); err == nil {
		se.Cache.Set(ctx, key, data, ttl)
	}
}
