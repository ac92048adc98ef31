package handlers

import (
	"errors"
	"net/http"

	appointmentRepo "voltserve/database/repository/appointment"
	centerRepo "voltserve/database/repository/center"
	catalogRepo "voltserve/database/repository/servicecatalog"
	technicianRepo "voltserve/database/repository/technician"
	"voltserve/models"
	"voltserve/services/scheduling"

	"github.com/gin-gonic/gin"
)

// respondError translates scheduling and repository errors into HTTP
// responses. Validation failures are 422, scheduling conflicts of every kind
// are 409, transient infrastructure failures are 503.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *scheduling.ValidationError
		conflictErr   *scheduling.ConflictError
		noTechErr     *scheduling.NoTechnicianAvailableError
		transitionErr *scheduling.InvalidTransitionError
		retryableErr  *scheduling.RetryableError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error(), "conflict": conflictErr})
	case errors.As(err, &noTechErr):
		c.JSON(http.StatusConflict, gin.H{"error": noTechErr.Error(), "details": noTechErr})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error(), "from": transitionErr.From, "to": transitionErr.To})
	case errors.As(err, &retryableErr):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": retryableErr.Error()})
	case errors.Is(err, appointmentRepo.ErrNotFound),
		errors.Is(err, technicianRepo.ErrNotFound),
		errors.Is(err, catalogRepo.ErrNotFound),
		errors.Is(err, centerRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// actorFrom reads the authenticated actor injected by the auth middleware.
func actorFrom(c *gin.Context) (models.Actor, bool) {
	val, exists := c.Get("actor")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return models.Actor{}, false
	}
	actor, ok := val.(models.Actor)
	if !ok || actor.ID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return models.Actor{}, false
	}
	return actor, true
}
