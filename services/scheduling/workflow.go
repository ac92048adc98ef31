package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "voltserve/database/repository/appointment"
	technicianRepo "voltserve/database/repository/technician"
	"voltserve/models"
	"voltserve/services/notification"
	"voltserve/utils"
)

// WorkflowService drives appointments through the status state machine.
// Every transition appends exactly one immutable history entry; concurrent
// transitions on the same appointment are serialized by an optimistic
// version check.
type WorkflowService struct {
	Appointments appointmentRepo.AppointmentRepository
	Technicians  technicianRepo.TechnicianRepository
	Notifier     notification.NotificationService

	AutoStartEnabled  bool
	AllowEarlyArrival bool

	// InspectionSubmitted reports whether the external inspection record for
	// the appointment is complete. Nil means no inspection system is wired
	// and the guard passes.
	InspectionSubmitted func(appointmentID string) bool

	// Now is overridable for deterministic time handling.
	Now func() time.Time
}

func (w *WorkflowService) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Transition applies a requested status change on behalf of an actor.
// Unreachable targets, disallowed roles and failed guards all yield
// InvalidTransitionError and leave the appointment untouched.
func (w *WorkflowService) Transition(ctx context.Context, appointmentID string, next models.AppointmentStatus, actor models.Actor, notes string) (*models.Appointment, error) {
	if next == models.StatusRescheduled {
		return nil, &InvalidTransitionError{To: next, Reason: "rescheduling requires a new slot; use the reschedule operation"}
	}

	// One reload on a lost version race; the re-evaluated state decides.
	for attempt := 0; attempt < 2; attempt++ {
		appt, err := w.Appointments.GetByID(appointmentID)
		if err != nil {
			return nil, err
		}

		if err := w.applyTransition(ctx, appt, next, actor, notes); err != nil {
			if errors.Is(err, appointmentRepo.ErrVersionConflict) && attempt == 0 {
				continue
			}
			return nil, err
		}
		return w.afterTransition(ctx, appointmentID, appt.Status, next, actor)
	}
	return nil, &RetryableError{Op: "status transition", Err: appointmentRepo.ErrVersionConflict}
}

func (w *WorkflowService) applyTransition(_ context.Context, appt *models.Appointment, next models.AppointmentStatus, actor models.Actor, notes string) error {
	rule, ok := lookupTransition(appt.Status, next)
	if !ok {
		return &InvalidTransitionError{From: appt.Status, To: next, Reason: "status not reachable"}
	}
	if !roleAllowed(rule.roles, actor.Role) {
		return &InvalidTransitionError{From: appt.Status, To: next, Reason: fmt.Sprintf("role %s not permitted", actor.Role)}
	}
	if rule.guard != nil {
		if err := rule.guard(w, appt, actor); err != nil {
			return err
		}
	}

	entry := models.WorkflowEntry{
		Status:    next,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Timestamp: w.now().UTC(),
		Notes:     notes,
	}
	return w.Appointments.UpdateStatus(appt.ID, appt.Version, next, entry)
}

// afterTransition runs post-commit side effects: workload release on
// terminal entry and the status-change notification.
func (w *WorkflowService) afterTransition(ctx context.Context, appointmentID string, previous, next models.AppointmentStatus, actor models.Actor) (*models.Appointment, error) {
	appt, err := w.Appointments.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}

	switch next {
	case models.StatusCompleted, models.StatusCancelled, models.StatusNoShow:
		w.releaseWorkload(appt)
	}

	if w.Notifier != nil {
		if err := w.Notifier.AppointmentStatusChanged(ctx, appt, previous); err != nil {
			utils.GetLogger().Sugar().Warnf("status notification failed for %s: %v", appt.Number, err)
		}
	}

	return appt, nil
}

func (w *WorkflowService) releaseWorkload(appt *models.Appointment) {
	if appt.TechnicianID == "" {
		return
	}
	if err := w.Technicians.AdjustWorkload(appt.TechnicianID, -workloadDelta(appt.DurationMinutes)); err != nil {
		utils.GetLogger().Sugar().Warnf("workload release failed for technician %s: %v", appt.TechnicianID, err)
	}
}

// GetReconciled fetches an appointment and runs the auto-start reconciliation
// for the observing actor.
func (w *WorkflowService) GetReconciled(ctx context.Context, appointmentID string, actor models.Actor) (*models.Appointment, error) {
	appt, err := w.Appointments.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	return w.Reconcile(ctx, appt, actor)
}

// Reconcile applies the implicit reception_approved -> in_progress transition
// when the assigned technician observes the appointment. The version check
// makes repeated observation idempotent: a raced or already-applied
// transition is a no-op, never a duplicate history entry.
func (w *WorkflowService) Reconcile(ctx context.Context, appt *models.Appointment, actor models.Actor) (*models.Appointment, error) {
	if !w.AutoStartEnabled {
		return appt, nil
	}
	if appt.Status != models.StatusReceptionApproved {
		return appt, nil
	}
	if actor.Role != models.RoleTechnician || actor.ID != appt.TechnicianID {
		return appt, nil
	}

	entry := models.WorkflowEntry{
		Status:    models.StatusInProgress,
		ActorID:   appt.TechnicianID,
		ActorRole: models.RoleSystem,
		Timestamp: w.now().UTC(),
		Notes:     "work auto-started on technician observation",
	}
	err := w.Appointments.UpdateStatus(appt.ID, appt.Version, models.StatusInProgress, entry)
	if err != nil && !errors.Is(err, appointmentRepo.ErrVersionConflict) {
		return nil, fmt.Errorf("auto-start: %w", err)
	}

	fresh, err := w.Appointments.GetByID(appt.ID)
	if err != nil {
		return nil, err
	}
	if w.Notifier != nil && fresh.Status == models.StatusInProgress && appt.Status != fresh.Status {
		if err := w.Notifier.AppointmentStatusChanged(ctx, fresh, appt.Status); err != nil {
			utils.GetLogger().Sugar().Warnf("status notification failed for %s: %v", fresh.Number, err)
		}
	}
	return fresh, nil
}

// History returns the append-only workflow log.
func (w *WorkflowService) History(appointmentID string) ([]models.WorkflowEntry, error) {
	appt, err := w.Appointments.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	return appt.History, nil
}

// SweepNoShows moves confirmed appointments whose start time passed more than
// graceMin minutes ago to no_show. Invoked by the background worker.
func (w *WorkflowService) SweepNoShows(ctx context.Context, date string, nowMinute, graceMin int) (int, error) {
	overdue, err := w.Appointments.ListOverdue(date, nowMinute, graceMin)
	if err != nil {
		return 0, fmt.Errorf("no-show sweep: %w", err)
	}

	swept := 0
	actor := models.Actor{ID: "scheduler", Role: models.RoleSystem}
	for i := range overdue {
		if _, err := w.Transition(ctx, overdue[i].ID, models.StatusNoShow, actor, "missed appointment window"); err != nil {
			utils.GetLogger().Sugar().Warnf("no-show sweep skipped %s: %v", overdue[i].Number, err)
			continue
		}
		swept++
	}
	return swept, nil
}
