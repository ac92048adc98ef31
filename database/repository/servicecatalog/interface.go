package catalogRepo

import (
	"errors"

	"voltserve/models"
)

// ErrNotFound is returned when no service matches the given id.
var ErrNotFound = errors.New("service not found")

// CatalogRepository defines data access for the service catalog.
type CatalogRepository interface {
	GetByID(id string) (*models.Service, error)
	GetMany(ids []string) ([]models.Service, error)
	List() ([]models.Service, error)
	Create(s *models.Service) error
	Update(s *models.Service) error
	Delete(id string) error
}
