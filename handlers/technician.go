package handlers

import (
	"net/http"

	technicianRepo "voltserve/database/repository/technician"
	"voltserve/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TechnicianHandler serves roster management for staff and admins.
type TechnicianHandler struct {
	Repo technicianRepo.TechnicianRepository
}

func NewTechnicianHandler(repo technicianRepo.TechnicianRepository) *TechnicianHandler {
	return &TechnicianHandler{Repo: repo}
}

func validTechnicianStatus(s models.TechnicianStatus) bool {
	switch s {
	case models.TechnicianAvailable, models.TechnicianBusy, models.TechnicianOffline:
		return true
	}
	return false
}

// ListByCenterHandler lists a center's roster.
// GET /api/centers/:centerID/technicians
func (h *TechnicianHandler) ListByCenterHandler(c *gin.Context) {
	technicians, err := h.Repo.ListByCenter(c.Param("centerID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"technicians": technicians})
}

// GetHandler fetches one technician.
// GET /api/technicians/:id
func (h *TechnicianHandler) GetHandler(c *gin.Context) {
	tech, err := h.Repo.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"technician": tech})
}

// CreateHandler adds a technician to the roster.
// POST /api/technicians
func (h *TechnicianHandler) CreateHandler(c *gin.Context) {
	var tech models.Technician
	if err := c.ShouldBindJSON(&tech); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if tech.CenterID == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "centerId is required"})
		return
	}
	for _, skill := range tech.Skills {
		if !models.IsValidCategory(skill.Category) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown skill category", "category": skill.Category})
			return
		}
		if skill.Proficiency < 1 || skill.Proficiency > 5 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "proficiency must be between 1 and 5"})
			return
		}
	}
	if tech.ID == "" {
		tech.ID = uuid.New().String()
	}
	if tech.Status == "" {
		tech.Status = models.TechnicianAvailable
	}

	if err := h.Repo.Create(&tech); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"technician": tech})
}

// UpdateHandler replaces a technician record.
// PUT /api/technicians/:id
func (h *TechnicianHandler) UpdateHandler(c *gin.Context) {
	var tech models.Technician
	if err := c.ShouldBindJSON(&tech); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	tech.ID = c.Param("id")

	if err := h.Repo.Update(&tech); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"technician": tech})
}

// SetStatusHandler flips a technician's availability status.
// PUT /api/technicians/:id/status
func (h *TechnicianHandler) SetStatusHandler(c *gin.Context) {
	var input struct {
		Status models.TechnicianStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if !validTechnicianStatus(input.Status) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown technician status", "status": input.Status})
		return
	}

	if err := h.Repo.SetStatus(c.Param("id"), input.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": input.Status})
}
