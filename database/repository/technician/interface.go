package technicianRepo

import (
	"errors"

	"voltserve/models"
)

// ErrNotFound is returned when no technician matches the given id.
var ErrNotFound = errors.New("technician not found")

// TechnicianRepository defines data access for the technician roster.
type TechnicianRepository interface {
	GetByID(id string) (*models.Technician, error)
	ListByCenter(centerID string) ([]models.Technician, error)
	Create(t *models.Technician) error
	Update(t *models.Technician) error

	// AdjustWorkload applies a bounded delta to the live workload percentage.
	// Callers must hold the relevant booking/workflow critical section.
	AdjustWorkload(id string, delta int) error

	SetStatus(id string, status models.TechnicianStatus) error
}
