package scheduling

import (
	"context"
	"errors"
	"fmt"

	appointmentRepo "voltserve/database/repository/appointment"
	"voltserve/models"
	"voltserve/utils"
)

// serviceCategoriesOf collects the distinct categories on an appointment.
func serviceCategoriesOf(appt *models.Appointment) []models.ServiceCategory {
	seen := make(map[models.ServiceCategory]bool)
	var categories []models.ServiceCategory
	for _, line := range appt.Services {
		if !seen[line.Category] {
			seen[line.Category] = true
			categories = append(categories, line.Category)
		}
	}
	return categories
}

// AssignTechnician sets or auto-selects the technician on an existing
// appointment. The new assignment is re-validated under the slot lock and
// workload moves from the old technician to the new one.
func (se *DefaultSchedulingEngine) AssignTechnician(ctx context.Context, appointmentID, technicianID string, autoAssign bool, actor models.Actor) (*models.Appointment, error) {
	appt, err := se.Appointments.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Status.IsTerminal() {
		return nil, &InvalidTransitionError{From: appt.Status, To: appt.Status, Reason: "appointment is terminal"}
	}

	if !autoAssign {
		if technicianID == "" {
			return nil, newValidationError("technicianId", "technician id or autoAssign is required")
		}
		if _, err := se.Technicians.GetByID(technicianID); err != nil {
			return nil, newValidationError("technicianId", "unknown technician %s", technicianID)
		}
	}

	if !autoAssign && technicianID == appt.TechnicianID {
		return appt, nil
	}

	lock, err := se.acquireBookingLock(ctx, appt.CenterID, appt.Date)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	// Ranking runs under the center-day lock so the chosen candidate stays
	// conflict-free until the commit.
	if autoAssign {
		ranked, err := se.RankTechnicians(ctx, appt.CenterID, appt.Date, appt.Start, appt.DurationMinutes, serviceCategoriesOf(appt))
		if err != nil {
			return nil, err
		}
		if len(ranked) == 0 {
			return nil, &NoTechnicianAvailableError{
				CenterID:   appt.CenterID,
				Date:       appt.Date,
				Categories: serviceCategoriesOf(appt),
			}
		}
		technicianID = ranked[0].Technician.ID
		if technicianID == appt.TechnicianID {
			return appt, nil
		}
	}

	if conflict, err := se.commitConflict(appt.CenterID, appt.Date, appt.Start, appt.End, technicianID, appt.ID); err != nil {
		return nil, err
	} else if conflict != nil {
		return nil, conflict
	}

	entry := models.WorkflowEntry{
		Status:    appt.Status,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Timestamp: se.now().UTC(),
		Notes:     fmt.Sprintf("technician %s assigned", technicianID),
	}
	if err := se.Appointments.UpdateTechnician(appt.ID, appt.Version, technicianID, entry); err != nil {
		if errors.Is(err, appointmentRepo.ErrVersionConflict) {
			return nil, &RetryableError{Op: "assign technician", Err: err}
		}
		return nil, fmt.Errorf("assign technician: %w", err)
	}

	delta := workloadDelta(appt.DurationMinutes)
	if appt.TechnicianID != "" {
		if err := se.Technicians.AdjustWorkload(appt.TechnicianID, -delta); err != nil {
			se.logWorkloadSkew(appt.TechnicianID, err)
		}
	}
	if err := se.Technicians.AdjustWorkload(technicianID, delta); err != nil {
		se.logWorkloadSkew(technicianID, err)
	}

	return se.Appointments.GetByID(appt.ID)
}

// Reschedule moves an appointment to a new slot. Only staff and admins may
// reschedule; the new slot is re-validated under the booking lock.
func (se *DefaultSchedulingEngine) Reschedule(ctx context.Context, appointmentID, newDate, newTime string, actor models.Actor) (*models.Appointment, error) {
	if actor.Role != models.RoleStaff && actor.Role != models.RoleAdmin {
		return nil, &InvalidTransitionError{To: models.StatusRescheduled, Reason: fmt.Sprintf("role %s may not reschedule", actor.Role)}
	}

	appt, err := se.Appointments.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Status.IsTerminal() {
		return nil, &InvalidTransitionError{From: appt.Status, To: models.StatusRescheduled, Reason: "appointment is terminal"}
	}

	center, err := se.Centers.GetByID(appt.CenterID)
	if err != nil {
		return nil, fmt.Errorf("reschedule: %w", err)
	}
	timing, err := se.validateTiming(center, newDate, newTime, appt.DurationMinutes)
	if err != nil {
		return nil, err
	}

	lock, err := se.acquireBookingLock(ctx, appt.CenterID, newDate)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	if conflict, err := se.commitConflict(appt.CenterID, newDate, timing.start, timing.end, appt.TechnicianID, appt.ID); err != nil {
		return nil, err
	} else if conflict != nil {
		return nil, conflict
	}

	entry := models.WorkflowEntry{
		Status:    models.StatusRescheduled,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Timestamp: se.now().UTC(),
		Notes:     fmt.Sprintf("moved to %s %s", newDate, newTime),
	}
	if err := se.Appointments.UpdateSchedule(appt.ID, appt.Version, newDate, timing.start, timing.end, timing.spillover, entry); err != nil {
		if errors.Is(err, appointmentRepo.ErrVersionConflict) {
			return nil, &RetryableError{Op: "reschedule", Err: err}
		}
		return nil, fmt.Errorf("reschedule: %w", err)
	}

	return se.Appointments.GetByID(appt.ID)
}

func (se *DefaultSchedulingEngine) logWorkloadSkew(technicianID string, err error) {
	// The assignment already committed; drift is corrected by the next
	// completion event.
	utils.GetLogger().Sugar().Warnf("workload adjustment failed for technician %s: %v", technicianID, err)
}
