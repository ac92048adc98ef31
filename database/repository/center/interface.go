package centerRepo

import (
	"errors"

	"voltserve/models"
)

// ErrNotFound is returned when no center matches the given id.
var ErrNotFound = errors.New("service center not found")

// CenterRepository defines data access for service centers.
type CenterRepository interface {
	GetByID(id string) (*models.ServiceCenter, error)
	List() ([]models.ServiceCenter, error)
	Create(c *models.ServiceCenter) error
	Update(c *models.ServiceCenter) error
}
