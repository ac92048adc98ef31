package scheduling

import (
	"fmt"

	"voltserve/models"
)

// ValidationError reports a malformed or policy-violating booking input.
// Never retried; surfaced to the caller verbatim.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports that the slot or technician was taken at commit time.
// It carries the competing appointment so the caller can offer alternatives.
type ConflictError struct {
	ConflictingAppointmentID string `json:"conflictingAppointmentId"`
	TechnicianID             string `json:"technicianId,omitempty"`
	Date                     string `json:"date"`
	OccupiedStart            string `json:"occupiedStart"`
	OccupiedEnd              string `json:"occupiedEnd"`
}

func (e *ConflictError) Error() string {
	if e.TechnicianID != "" {
		return fmt.Sprintf("technician %s already booked on %s %s-%s (appointment %s)",
			e.TechnicianID, e.Date, e.OccupiedStart, e.OccupiedEnd, e.ConflictingAppointmentID)
	}
	return fmt.Sprintf("no bay free on %s %s-%s (appointment %s)",
		e.Date, e.OccupiedStart, e.OccupiedEnd, e.ConflictingAppointmentID)
}

// NoTechnicianAvailableError reports an empty eligible set from the matcher.
// Distinct from ConflictError: no specific competing appointment exists.
type NoTechnicianAvailableError struct {
	CenterID   string                   `json:"centerId"`
	Date       string                   `json:"date"`
	Categories []models.ServiceCategory `json:"categories"`
}

func (e *NoTechnicianAvailableError) Error() string {
	return fmt.Sprintf("no eligible technician at center %s on %s for categories %v",
		e.CenterID, e.Date, e.Categories)
}

// InvalidTransitionError reports a status change not reachable from the
// current status, or an actor without permission for it.
type InvalidTransitionError struct {
	From   models.AppointmentStatus `json:"from"`
	To     models.AppointmentStatus `json:"to"`
	Reason string                   `json:"reason"`
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s: %s", e.From, e.To, e.Reason)
}

// RetryableError wraps a transient infrastructure failure (lock contention,
// store timeout). The booking path retries it once; callers may retry too.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }
