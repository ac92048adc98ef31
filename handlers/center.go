package handlers

import (
	"net/http"

	centerRepo "voltserve/database/repository/center"
	"voltserve/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CenterHandler serves service-center management for admins.
type CenterHandler struct {
	Repo centerRepo.CenterRepository
}

func NewCenterHandler(repo centerRepo.CenterRepository) *CenterHandler {
	return &CenterHandler{Repo: repo}
}

func validateCenter(center *models.ServiceCenter) (string, bool) {
	if center.BayCount <= 0 {
		return "bayCount must be positive", false
	}
	if center.OpenMinute < 0 || center.CloseMinute > 1440 || center.OpenMinute >= center.CloseMinute {
		return "operating hours must satisfy 0 <= open < close <= 1440", false
	}
	return "", true
}

// ListHandler lists all service centers.
// GET /api/centers
func (h *CenterHandler) ListHandler(c *gin.Context) {
	centers, err := h.Repo.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"centers": centers})
}

// GetHandler fetches one service center.
// GET /api/centers/:centerID
func (h *CenterHandler) GetHandler(c *gin.Context) {
	center, err := h.Repo.GetByID(c.Param("centerID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"center": center})
}

// CreateHandler registers a service center.
// POST /api/centers
func (h *CenterHandler) CreateHandler(c *gin.Context) {
	var center models.ServiceCenter
	if err := c.ShouldBindJSON(&center); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if msg, ok := validateCenter(&center); !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msg})
		return
	}
	if center.ID == "" {
		center.ID = uuid.New().String()
	}

	if err := h.Repo.Create(&center); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"center": center})
}

// UpdateHandler replaces a service center record.
// PUT /api/centers/:centerID
func (h *CenterHandler) UpdateHandler(c *gin.Context) {
	var center models.ServiceCenter
	if err := c.ShouldBindJSON(&center); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	center.ID = c.Param("centerID")
	if msg, ok := validateCenter(&center); !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msg})
		return
	}

	if err := h.Repo.Update(&center); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"center": center})
}
