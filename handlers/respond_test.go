package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	appointmentRepo "voltserve/database/repository/appointment"
	"voltserve/services/scheduling"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func runRespond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(c, err)
	return w
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &scheduling.ValidationError{Field: "time", Message: "bad"}, http.StatusUnprocessableEntity},
		{"conflict", &scheduling.ConflictError{ConflictingAppointmentID: "a1", Date: "2026-09-03"}, http.StatusConflict},
		{"no technician", &scheduling.NoTechnicianAvailableError{CenterID: "c1"}, http.StatusConflict},
		{"invalid transition", &scheduling.InvalidTransitionError{Reason: "closed"}, http.StatusConflict},
		{"retryable", &scheduling.RetryableError{Op: "lock", Err: assert.AnError}, http.StatusServiceUnavailable},
		{"not found", appointmentRepo.ErrNotFound, http.StatusNotFound},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := runRespond(tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRespondRetryableSetsRetryAfter(t *testing.T) {
	w := runRespond(&scheduling.RetryableError{Op: "lock", Err: assert.AnError})
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
