package handlers

import (
	"context"
	"net/http"
	"strconv"

	appointmentRepo "voltserve/database/repository/appointment"
	"voltserve/models"
	"voltserve/services/scheduling"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReminderScheduler enqueues the pre-appointment reminder task.
type ReminderScheduler interface {
	ScheduleAppointmentReminder(ctx context.Context, appt *models.Appointment) error
}

// AppointmentHandler serves the booking transaction, the workflow transitions
// and appointment queries.
type AppointmentHandler struct {
	Engine    scheduling.SchedulingEngine
	Workflow  *scheduling.WorkflowService
	Repo      appointmentRepo.AppointmentRepository
	Reminders ReminderScheduler
	Logger    *zap.Logger
}

func NewAppointmentHandler(engine scheduling.SchedulingEngine, workflow *scheduling.WorkflowService, repo appointmentRepo.AppointmentRepository, reminders ReminderScheduler, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Engine: engine, Workflow: workflow, Repo: repo, Reminders: reminders, Logger: logger}
}

// BookHandler commits a booking draft.
// POST /api/appointments
func (h *AppointmentHandler) BookHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var draft models.BookingDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	// Customers book for themselves; staff may book on a customer's behalf.
	if actor.Role == models.RoleCustomer {
		draft.CustomerID = actor.ID
	}

	appt, err := h.Engine.Book(c.Request.Context(), draft)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.Reminders != nil {
		if err := h.Reminders.ScheduleAppointmentReminder(c.Request.Context(), appt); err != nil {
			h.Logger.Sugar().Warnf("reminder scheduling failed for %s: %v", appt.Number, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"appointment": appt})
}

// GetHandler fetches one appointment, running the auto-start reconciliation
// for the observing actor.
// GET /api/appointments/:id
func (h *AppointmentHandler) GetHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	appt, err := h.Workflow.GetReconciled(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if actor.Role == models.RoleCustomer && appt.CustomerID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "appointment belongs to another customer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// HistoryHandler returns the append-only workflow log.
// GET /api/appointments/:id/history
func (h *AppointmentHandler) HistoryHandler(c *gin.Context) {
	history, err := h.Workflow.History(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// ListByCenterHandler lists a center's appointments for one date.
// GET /api/centers/:centerID/appointments?date=2026-09-03
func (h *AppointmentHandler) ListByCenterHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	appts, err := h.Repo.ListByCenterDate(c.Param("centerID"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// ListByTechnicianHandler lists a technician's appointments for one date.
// GET /api/technicians/:id/appointments?date=2026-09-03
func (h *AppointmentHandler) ListByTechnicianHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	appts, err := h.Repo.ListByTechnicianDate(c.Param("id"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// ListMineHandler lists the calling customer's appointments, newest first.
// GET /api/appointments?limit=20&offset=0
func (h *AppointmentHandler) ListMineHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	appts, err := h.Repo.ListByCustomer(actor.ID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// TransitionHandler applies a workflow status change.
// POST /api/appointments/:id/transition
func (h *AppointmentHandler) TransitionHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Status models.AppointmentStatus `json:"status" binding:"required"`
		Notes  string                   `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	appt, err := h.Workflow.Transition(c.Request.Context(), c.Param("id"), input.Status, actor, input.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// CancelHandler cancels an appointment through the workflow.
// DELETE /api/appointments/:id
func (h *AppointmentHandler) CancelHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	appt, err := h.Workflow.Transition(c.Request.Context(), c.Param("id"), models.StatusCancelled, actor, c.Query("reason"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// AssignHandler sets or auto-selects the technician on an appointment.
// PUT /api/appointments/:id/technician
func (h *AppointmentHandler) AssignHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		TechnicianID string `json:"technicianId"`
		AutoAssign   bool   `json:"autoAssign"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	appt, err := h.Engine.AssignTechnician(c.Request.Context(), c.Param("id"), input.TechnicianID, input.AutoAssign, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// RescheduleHandler moves an appointment to a new slot.
// PUT /api/appointments/:id/schedule
func (h *AppointmentHandler) RescheduleHandler(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Date string `json:"date" binding:"required"`
		Time string `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	appt, err := h.Engine.Reschedule(c.Request.Context(), c.Param("id"), input.Date, input.Time, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.Reminders != nil {
		if err := h.Reminders.ScheduleAppointmentReminder(c.Request.Context(), appt); err != nil {
			h.Logger.Sugar().Warnf("reminder scheduling failed for %s: %v", appt.Number, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}
