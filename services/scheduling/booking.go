package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voltserve/models"
	"voltserve/utils"

	"github.com/google/uuid"
)

// workloadDelta converts an appointment duration into workload percentage
// points, sized against an eight-hour bay day.
func workloadDelta(durationMin int) int {
	delta := durationMin * 100 / 480
	if delta < 1 {
		delta = 1
	}
	if delta > 100 {
		delta = 100
	}
	return delta
}

// Book validates the draft, serializes on the slot lock, re-checks conflicts
// authoritatively and commits the appointment in state pending.
func (se *DefaultSchedulingEngine) Book(ctx context.Context, draft models.BookingDraft) (*models.Appointment, error) {
	v, err := se.validateDraft(draft)
	if err != nil {
		return nil, err
	}

	technicianID := draft.TechnicianID
	lock, err := se.acquireBookingLock(ctx, draft.CenterID, draft.Date)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	// Authoritative re-check inside the critical section; the advisory
	// availability read may have gone stale.
	if conflict, err := se.commitConflict(draft.CenterID, draft.Date, v.start, v.end, technicianID, ""); err != nil {
		return nil, err
	} else if conflict != nil {
		return nil, conflict
	}

	if draft.AutoAssign && technicianID == "" {
		technicianID, err = se.selectTechnician(ctx, draft, v)
		if err != nil {
			return nil, err
		}
	} else if technicianID != "" {
		if _, err := se.Technicians.GetByID(technicianID); err != nil {
			return nil, newValidationError("technicianId", "unknown technician %s", technicianID)
		}
	}

	seq, err := se.Sequencer.Next(ctx, draft.CenterID, draft.Date)
	if err != nil {
		return nil, &RetryableError{Op: "appointment numbering", Err: err}
	}

	now := se.now().UTC()
	appt := &models.Appointment{
		ID:              uuid.New().String(),
		Number:          formatAppointmentNumber(draft.Date, seq),
		CenterID:        draft.CenterID,
		CustomerID:      draft.CustomerID,
		VehicleID:       draft.VehicleID,
		Services:        v.lines,
		Date:            draft.Date,
		Start:           v.start,
		End:             v.end,
		DurationMinutes: v.durationMin,
		TechnicianID:    technicianID,
		Priority:        v.priority,
		Status:          models.StatusPending,
		CustomerNotes:   draft.CustomerNotes,
		SpilloverFlag:   v.spillover,
		TotalPrice:      v.totalPrice,
		Version:         1,
		CreatedAt:       now,
		History: []models.WorkflowEntry{{
			Status:    models.StatusPending,
			ActorID:   draft.CustomerID,
			ActorRole: models.RoleCustomer,
			Timestamp: now,
			Notes:     "appointment created",
		}},
	}

	delta := 0
	if technicianID != "" {
		delta = workloadDelta(v.durationMin)
	}
	if err := se.Appointments.CommitBooking(ctx, appt, delta); err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}

	return appt, nil
}

// selectTechnician runs auto-assignment inside the booking critical section.
// The center-day lock is held, so the ranking's per-candidate conflict checks
// are authoritative and the chosen technician cannot lose the slot before the
// commit.
func (se *DefaultSchedulingEngine) selectTechnician(ctx context.Context, draft models.BookingDraft, v *validatedDraft) (string, error) {
	ranked, err := se.RankTechnicians(ctx, draft.CenterID, draft.Date, v.start, v.durationMin, v.categories)
	if err != nil {
		return "", err
	}
	if len(ranked) == 0 {
		return "", &NoTechnicianAvailableError{
			CenterID:   draft.CenterID,
			Date:       draft.Date,
			Categories: v.categories,
		}
	}
	return ranked[0].Technician.ID, nil
}

// commitConflict is the authoritative conflict check run under the lock.
// excludeID drops the appointment being moved from its own reservation set.
func (se *DefaultSchedulingEngine) commitConflict(centerID, date string, start, end int, technicianID, excludeID string) (*ConflictError, error) {
	center, err := se.Centers.GetByID(centerID)
	if err != nil {
		return nil, fmt.Errorf("commit conflict check: %w", err)
	}
	overlapping, err := se.Appointments.FindOverlapping(centerID, date, start, end)
	if err != nil {
		return nil, &RetryableError{Op: "commit conflict check", Err: err}
	}
	if excludeID != "" {
		filtered := overlapping[:0]
		for _, a := range overlapping {
			if a.ID != excludeID {
				filtered = append(filtered, a)
			}
		}
		overlapping = filtered
	}

	check := evaluateConflicts(overlapping, center.BayCount, technicianID)
	if !check.HasConflict && technicianID != "" {
		// A named technician still needs a free bay.
		bayCheck := evaluateConflicts(overlapping, center.BayCount, "")
		if bayCheck.HasConflict {
			check = bayCheck
		}
	}
	if !check.HasConflict {
		return nil, nil
	}
	return &ConflictError{
		ConflictingAppointmentID: check.ConflictingAppointmentID,
		TechnicianID:             check.ConflictingTechnicianID,
		Date:                     date,
		OccupiedStart:            utils.FormatClockMinutes(check.OccupiedStart),
		OccupiedEnd:              utils.FormatClockMinutes(check.OccupiedEnd),
	}, nil
}

// acquireBookingLock takes the commit lease, retrying once on contention
// before reporting a retryable failure.
func (se *DefaultSchedulingEngine) acquireBookingLock(ctx context.Context, centerID, date string) (LockHandle, error) {
	key := bookingLockKey(centerID, date)
	ttl := se.Policy.LockTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	lock, err := se.Locker.Acquire(ctx, key, ttl)
	if err == nil {
		return lock, nil
	}
	if !errors.Is(err, utils.ErrLockHeld) {
		return nil, &RetryableError{Op: "booking lock", Err: err}
	}

	// Single bounded retry after a short backoff.
	select {
	case <-ctx.Done():
		return nil, &RetryableError{Op: "booking lock", Err: ctx.Err()}
	case <-time.After(100 * time.Millisecond):
	}
	lock, err = se.Locker.Acquire(ctx, key, ttl)
	if err != nil {
		return nil, &RetryableError{Op: "booking lock", Err: err}
	}
	return lock, nil
}
