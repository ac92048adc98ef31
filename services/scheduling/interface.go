package scheduling

import (
	"context"
	"time"

	appointmentRepo "voltserve/database/repository/appointment"
	centerRepo "voltserve/database/repository/center"
	catalogRepo "voltserve/database/repository/servicecatalog"
	technicianRepo "voltserve/database/repository/technician"
	"voltserve/models"

	"github.com/go-redis/redis/v8"
)

// Policy carries the scheduling knobs loaded from configuration.
type Policy struct {
	GranularityMin       int
	MinLeadTimeMin       int
	AllowSpillover       bool
	AutoStartEnabled     bool
	LockTTL              time.Duration
	AvailabilityCacheTTL time.Duration
}

// ConflictCheck is the conflict detector's result.
type ConflictCheck struct {
	HasConflict              bool   `json:"hasConflict"`
	ConflictCount            int    `json:"conflictCount"`
	ConflictingAppointmentID string `json:"conflictingAppointmentId,omitempty"`
	ConflictingTechnicianID  string `json:"conflictingTechnicianId,omitempty"`
	OccupiedStart            int    `json:"-"`
	OccupiedEnd              int    `json:"-"`
}

// SchedulingEngine computes availability, detects conflicts, ranks
// technicians and commits bookings.
type SchedulingEngine interface {
	// ComputeSlots produces the bookable slot grid for a center and date.
	// Pure read; advisory only.
	ComputeSlots(ctx context.Context, centerID, date string, durationMin, granularityMin int) ([]models.TimeSlot, error)

	// CheckConflict runs the advisory conflict detector for one candidate.
	CheckConflict(ctx context.Context, centerID, date string, start, durationMin int, technicianID string) (*ConflictCheck, error)

	// RankTechnicians returns eligible technicians for the slot, best first.
	RankTechnicians(ctx context.Context, centerID, date string, start, durationMin int, categories []models.ServiceCategory) ([]models.TechnicianCandidate, error)

	// Book validates the draft and commits it under the slot lock.
	Book(ctx context.Context, draft models.BookingDraft) (*models.Appointment, error)

	// AssignTechnician sets or auto-selects the technician on an existing
	// appointment, re-validated under the slot lock.
	AssignTechnician(ctx context.Context, appointmentID, technicianID string, autoAssign bool, actor models.Actor) (*models.Appointment, error)

	// Reschedule moves an appointment to a new slot, re-validated under the
	// slot lock.
	Reschedule(ctx context.Context, appointmentID, newDate, newTime string, actor models.Actor) (*models.Appointment, error)
}

// DefaultSchedulingEngine is the production implementation.
type DefaultSchedulingEngine struct {
	Appointments appointmentRepo.AppointmentRepository
	Technicians  technicianRepo.TechnicianRepository
	Catalog      catalogRepo.CatalogRepository
	Centers      centerRepo.CenterRepository
	Locker       SlotLocker
	Sequencer    Sequencer
	Cache        *redis.Client // optional; nil disables the availability snapshot cache
	Policy       Policy

	// Now is overridable for deterministic time handling.
	Now func() time.Time
}

func (se *DefaultSchedulingEngine) now() time.Time {
	if se.Now != nil {
		return se.Now()
	}
	return time.Now()
}
