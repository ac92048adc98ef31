package handlers

import (
	"net/http"
	"strconv"

	"voltserve/models"
	"voltserve/services/scheduling"
	"voltserve/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AvailabilityHandler serves the slot grid, the advisory conflict check and
// technician ranking for a candidate slot.
type AvailabilityHandler struct {
	Engine scheduling.SchedulingEngine
	Logger *zap.Logger
}

func NewAvailabilityHandler(engine scheduling.SchedulingEngine, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{Engine: engine, Logger: logger}
}

// GetSlotsHandler returns the bookable slot grid for a center and date.
// GET /api/centers/:centerID/slots?date=2026-09-03&duration=90&granularity=30
func (h *AvailabilityHandler) GetSlotsHandler(c *gin.Context) {
	centerID := c.Param("centerID")
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	durationMin, err := strconv.Atoi(c.DefaultQuery("duration", "30"))
	if err != nil || durationMin <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration must be a positive number of minutes"})
		return
	}
	granularityMin, _ := strconv.Atoi(c.DefaultQuery("granularity", "0"))

	slots, err := h.Engine.ComputeSlots(c.Request.Context(), centerID, date, durationMin, granularityMin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"centerId": centerID,
		"date":     date,
		"duration": durationMin,
		"slots":    slots,
	})
}

// CheckConflictHandler runs the advisory conflict detector before a booking
// attempt. The result is not a reservation; commit re-checks under the lock.
// POST /api/centers/:centerID/conflict-check
func (h *AvailabilityHandler) CheckConflictHandler(c *gin.Context) {
	centerID := c.Param("centerID")
	var input struct {
		Date         string `json:"date" binding:"required"`
		Time         string `json:"time" binding:"required"`
		DurationMin  int    `json:"durationMinutes" binding:"required"`
		TechnicianID string `json:"technicianId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	start, err := utils.ParseClockMinutes(input.Time)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	check, err := h.Engine.CheckConflict(c.Request.Context(), centerID, input.Date, start, input.DurationMin, input.TechnicianID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

// RankTechniciansHandler returns eligible technicians for a slot, best first.
// POST /api/centers/:centerID/technicians/rank
func (h *AvailabilityHandler) RankTechniciansHandler(c *gin.Context) {
	centerID := c.Param("centerID")
	var input struct {
		Date        string                   `json:"date" binding:"required"`
		Time        string                   `json:"time" binding:"required"`
		DurationMin int                      `json:"durationMinutes" binding:"required"`
		Categories  []models.ServiceCategory `json:"categories" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	for _, cat := range input.Categories {
		if !models.IsValidCategory(cat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown service category", "category": cat})
			return
		}
	}

	start, err := utils.ParseClockMinutes(input.Time)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ranked, err := h.Engine.RankTechnicians(c.Request.Context(), centerID, input.Date, start, input.DurationMin, input.Categories)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"centerId":   centerID,
		"date":       input.Date,
		"candidates": ranked,
	})
}
