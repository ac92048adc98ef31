package handlers

import (
	"net/http"

	catalogRepo "voltserve/database/repository/servicecatalog"
	"voltserve/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogHandler serves service catalog CRUD for admins.
type CatalogHandler struct {
	Repo catalogRepo.CatalogRepository
}

func NewCatalogHandler(repo catalogRepo.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{Repo: repo}
}

// ListServicesHandler lists the full catalog.
// GET /api/services
func (h *CatalogHandler) ListServicesHandler(c *gin.Context) {
	services, err := h.Repo.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// GetServiceHandler fetches one catalog entry.
// GET /api/services/:id
func (h *CatalogHandler) GetServiceHandler(c *gin.Context) {
	svc, err := h.Repo.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": svc})
}

// CreateServiceHandler adds a catalog entry.
// POST /api/services
func (h *CatalogHandler) CreateServiceHandler(c *gin.Context) {
	var svc models.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if !models.IsValidCategory(svc.Category) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown service category", "category": svc.Category})
		return
	}
	if svc.EstimatedMinutes <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "estimated minutes must be positive"})
		return
	}
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}

	if err := h.Repo.Create(&svc); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"service": svc})
}

// UpdateServiceHandler replaces a catalog entry.
// PUT /api/services/:id
func (h *CatalogHandler) UpdateServiceHandler(c *gin.Context) {
	var svc models.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	svc.ID = c.Param("id")
	if !models.IsValidCategory(svc.Category) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown service category", "category": svc.Category})
		return
	}

	if err := h.Repo.Update(&svc); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": svc})
}

// DeleteServiceHandler removes a catalog entry.
// DELETE /api/services/:id
func (h *CatalogHandler) DeleteServiceHandler(c *gin.Context) {
	if err := h.Repo.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
