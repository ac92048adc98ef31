package appointmentRepo

import (
	"context"
	"errors"

	"voltserve/models"
)

// ErrNotFound is returned when no appointment matches the given id.
var ErrNotFound = errors.New("appointment not found")

// ErrVersionConflict is returned when an optimistic update lost a race; the
// caller should reload and re-evaluate.
var ErrVersionConflict = errors.New("appointment version conflict")

// AppointmentRepository defines data access for appointments. Reservations are
// a projection of non-terminal appointments, so overlap queries live here too.
type AppointmentRepository interface {
	GetByID(id string) (*models.Appointment, error)
	GetByNumber(number string) (*models.Appointment, error)

	// FindOverlapping returns non-terminal appointments at the center whose
	// [start,end) range intersects the given one on the same date.
	FindOverlapping(centerID, date string, start, end int) ([]models.Appointment, error)

	ListByCenterDate(centerID, date string) ([]models.Appointment, error)
	ListByTechnicianDate(technicianID, date string) ([]models.Appointment, error)
	ListByCustomer(customerID string, limit, offset int64) ([]models.Appointment, error)

	// ListOverdue returns confirmed appointments on the given date whose start
	// time lies more than graceMin minutes in the past (no-show sweep input).
	ListOverdue(date string, nowMinute, graceMin int) ([]models.Appointment, error)

	// CommitBooking inserts the appointment and applies the technician
	// workload delta as one transactional unit.
	CommitBooking(ctx context.Context, appt *models.Appointment, workloadDelta int) error

	// UpdateStatus performs an optimistic status change: it matches the stored
	// version, sets the new status, appends the history entry and bumps the
	// version. Returns ErrVersionConflict when the version moved.
	UpdateStatus(id string, version int, status models.AppointmentStatus, entry models.WorkflowEntry) error

	// UpdateSchedule moves the appointment to a new date/time under the same
	// optimistic discipline. The spillover flag is recomputed for the new slot
	// and persisted with it.
	UpdateSchedule(id string, version int, date string, start, end int, spillover bool, entry models.WorkflowEntry) error

	// UpdateTechnician reassigns the appointment under the same optimistic
	// discipline.
	UpdateTechnician(id string, version int, technicianID string, entry models.WorkflowEntry) error
}
