package scheduling

import (
	"context"
	"testing"

	"voltserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignTechnicianExplicit(t *testing.T) {
	f := newFixture()
	f.addTechnician("t1", func(tech *models.Technician) { tech.WorkloadPercent = 30 })
	f.addTechnician("t2", nil)
	f.addAppointment("a1", func(a *models.Appointment) {
		a.TechnicianID = "t1"
		a.DurationMinutes = 60
	})

	appt, err := f.engine.AssignTechnician(context.Background(), "a1", "t2", false, staffActor)
	require.NoError(t, err)
	assert.Equal(t, "t2", appt.TechnicianID)
	assert.Equal(t, 2, appt.Version)

	// Workload moved from t1 to t2.
	t1, _ := f.techs.GetByID("t1")
	t2, _ := f.techs.GetByID("t2")
	assert.Equal(t, 30-workloadDelta(60), t1.WorkloadPercent)
	assert.Equal(t, workloadDelta(60), t2.WorkloadPercent)
}

func TestAssignTechnicianConflictRejected(t *testing.T) {
	f := newFixture()
	f.addTechnician("t1", nil)
	f.addTechnician("t2", nil)
	f.addAppointment("a1", func(a *models.Appointment) { a.TechnicianID = "t1" })
	f.addAppointment("a2", func(a *models.Appointment) {
		a.TechnicianID = "t2"
		a.Start = 9 * 60
		a.End = 10 * 60
	})

	_, err := f.engine.AssignTechnician(context.Background(), "a1", "t2", false, staffActor)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "a2", conflictErr.ConflictingAppointmentID)
}

func TestAssignTechnicianAutoPicksTop(t *testing.T) {
	f := newFixture()
	f.addTechnician("t1", func(tech *models.Technician) { tech.WorkloadPercent = 70 })
	f.addTechnician("t2", func(tech *models.Technician) { tech.WorkloadPercent = 5 })
	f.addAppointment("a1", func(a *models.Appointment) {
		a.Services = []models.ServiceLine{{ServiceID: "svc-battery", Category: models.CategoryBattery, Quantity: 1, DurationMinutes: 60}}
	})

	appt, err := f.engine.AssignTechnician(context.Background(), "a1", "", true, staffActor)
	require.NoError(t, err)
	assert.Equal(t, "t2", appt.TechnicianID)
}

func TestAssignTechnicianValidation(t *testing.T) {
	f := newFixture()
	f.addAppointment("a1", nil)
	var validationErr *ValidationError

	_, err := f.engine.AssignTechnician(context.Background(), "a1", "", false, staffActor)
	require.ErrorAs(t, err, &validationErr)

	_, err = f.engine.AssignTechnician(context.Background(), "a1", "ghost", false, staffActor)
	require.ErrorAs(t, err, &validationErr)
}

func TestAssignTechnicianTerminalRejected(t *testing.T) {
	f := newFixture()
	f.addTechnician("t1", nil)
	f.addAppointment("a1", func(a *models.Appointment) { a.Status = models.StatusCancelled })

	_, err := f.engine.AssignTechnician(context.Background(), "a1", "t1", false, staffActor)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestAssignSameTechnicianIsNoOp(t *testing.T) {
	f := newFixture()
	f.addTechnician("t1", nil)
	f.addAppointment("a1", func(a *models.Appointment) { a.TechnicianID = "t1" })

	appt, err := f.engine.AssignTechnician(context.Background(), "a1", "t1", false, staffActor)
	require.NoError(t, err)
	assert.Equal(t, 1, appt.Version, "no version bump on a no-op assignment")
}

func TestRescheduleMovesSlot(t *testing.T) {
	f := newFixture()
	f.addAppointment("a1", nil)

	appt, err := f.engine.Reschedule(context.Background(), "a1", "2026-09-04", "14:00", staffActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRescheduled, appt.Status)
	assert.Equal(t, "2026-09-04", appt.Date)
	assert.Equal(t, 14*60, appt.Start)
	assert.Equal(t, 15*60, appt.End)
	assert.Equal(t, 2, appt.Version)
	assert.Contains(t, appt.History[len(appt.History)-1].Notes, "2026-09-04 14:00")

	// Rescheduled appointments re-enter the flow through confirmation.
	confirmed, err := f.workflow.Transition(context.Background(), "a1", models.StatusConfirmed, staffActor, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
}

func TestReschedulePersistsSpilloverFlag(t *testing.T) {
	f := newFixture()
	f.addAppointment("a1", nil)

	appt, err := f.engine.Reschedule(context.Background(), "a1", "2026-09-03", "16:30", staffActor)
	require.NoError(t, err)
	assert.True(t, appt.SpilloverFlag, "16:30+60min runs past the 17:00 close")

	appt, err = f.engine.Reschedule(context.Background(), "a1", "2026-09-03", "14:00", staffActor)
	require.NoError(t, err)
	assert.False(t, appt.SpilloverFlag, "moving back inside hours clears the flag")
}

func TestRescheduleCustomerRejected(t *testing.T) {
	f := newFixture()
	f.addAppointment("a1", nil)

	_, err := f.engine.Reschedule(context.Background(), "a1", "2026-09-04", "14:00", customerActor)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestRescheduleTargetConflictRejected(t *testing.T) {
	f := newFixture()
	f.addTechnician("t1", nil)
	f.addAppointment("a1", func(a *models.Appointment) { a.TechnicianID = "t1" })
	f.addAppointment("a2", func(a *models.Appointment) {
		a.TechnicianID = "t1"
		a.Date = "2026-09-04"
		a.Start = 14 * 60
		a.End = 15 * 60
	})

	_, err := f.engine.Reschedule(context.Background(), "a1", "2026-09-04", "14:30", staffActor)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "a2", conflictErr.ConflictingAppointmentID)
}

func TestRescheduleValidatesTargetSlot(t *testing.T) {
	f := newFixture()
	f.addAppointment("a1", nil)
	var validationErr *ValidationError

	_, err := f.engine.Reschedule(context.Background(), "a1", "2026-09-04", "07:00", staffActor)
	require.ErrorAs(t, err, &validationErr, "before opening")

	_, err = f.engine.Reschedule(context.Background(), "a1", "2026-08-30", "10:00", staffActor)
	require.ErrorAs(t, err, &validationErr, "in the past")
}

func TestRescheduleExcludesOwnReservation(t *testing.T) {
	f := newFixture()
	f.centers.byID["c1"] = models.ServiceCenter{
		ID: "c1", OpenMinute: 8 * 60, CloseMinute: 17 * 60, BayCount: 1,
	}
	f.addAppointment("a1", nil)

	// Moving within the same occupied window must not conflict with itself.
	appt, err := f.engine.Reschedule(context.Background(), "a1", "2026-09-03", "09:30", staffActor)
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, appt.Start)
}
