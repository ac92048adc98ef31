package scheduling

import (
	"context"
	"fmt"

	"voltserve/models"
	"voltserve/utils"
)

// CheckConflict is the advisory conflict detector. It is a lock-free read of
// the reservation projection; the authoritative check runs again inside the
// booking critical section.
func (se *DefaultSchedulingEngine) CheckConflict(ctx context.Context, centerID, date string, start, durationMin int, technicianID string) (*ConflictCheck, error) {
	if durationMin <= 0 {
		return nil, newValidationError("duration", "duration must be positive, got %d", durationMin)
	}
	if _, err := utils.ParseDate(date); err != nil {
		return nil, newValidationError("date", "%v", err)
	}

	center, err := se.Centers.GetByID(centerID)
	if err != nil {
		return nil, fmt.Errorf("conflict check: %w", err)
	}

	end := start + durationMin
	overlapping, err := se.Appointments.FindOverlapping(centerID, date, start, end)
	if err != nil {
		return nil, fmt.Errorf("conflict check: %w", err)
	}

	return evaluateConflicts(overlapping, center.BayCount, technicianID), nil
}

// evaluateConflicts applies the two conflict rules to an overlap set: a named
// technician may not hold any overlapping reservation; anonymous bookings
// conflict when the bay pool is exhausted.
func evaluateConflicts(overlapping []models.Appointment, bayCount int, technicianID string) *ConflictCheck {
	check := &ConflictCheck{ConflictCount: len(overlapping)}

	if technicianID != "" {
		for i := range overlapping {
			if overlapping[i].TechnicianID == technicianID {
				check.HasConflict = true
				check.ConflictingAppointmentID = overlapping[i].ID
				check.ConflictingTechnicianID = technicianID
				check.OccupiedStart = overlapping[i].Start
				check.OccupiedEnd = overlapping[i].End
				return check
			}
		}
		return check
	}

	if bayCount > 0 && len(overlapping) >= bayCount {
		check.HasConflict = true
		check.ConflictingAppointmentID = overlapping[0].ID
		check.OccupiedStart = overlapping[0].Start
		check.OccupiedEnd = overlapping[0].End
	}
	return check
}
