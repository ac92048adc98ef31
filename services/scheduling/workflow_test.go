package scheduling

import (
	"context"
	"testing"
	"time"

	"voltserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	staffActor    = models.Actor{ID: "staff-1", Role: models.RoleStaff}
	adminActor    = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
	customerActor = models.Actor{ID: "cust-1", Role: models.RoleCustomer}
	techActor     = models.Actor{ID: "t1", Role: models.RoleTechnician}
)

func TestTransitionHappyPath(t *testing.T) {
	f := newFixture()
	f.addTechnician("t1", nil)
	f.addAppointment("a1", func(a *models.Appointment) {
		a.Status = models.StatusPending
		a.TechnicianID = "t1"
		a.Date = "2026-09-01" // today, so the arrival guard passes
	})
	ctx := context.Background()

	steps := []struct {
		next  models.AppointmentStatus
		actor models.Actor
	}{
		{models.StatusConfirmed, staffActor},
		{models.StatusCustomerArrived, staffActor},
		{models.StatusReceptionCreated, techActor},
		{models.StatusReceptionApproved, staffActor},
		{models.StatusInProgress, techActor},
		{models.StatusCompleted, techActor},
		{models.StatusInvoiced, adminActor},
	}

	for _, step := range steps {
		appt, err := f.workflow.Transition(ctx, "a1", step.next, step.actor, "")
		require.NoError(t, err, "transition to %s", step.next)
		assert.Equal(t, step.next, appt.Status)
	}

	appt, err := f.appts.GetByID("a1")
	require.NoError(t, err)
	assert.Len(t, appt.History, len(steps))
	assert.Equal(t, len(steps)+1, appt.Version)
}

func TestTransitionSkippingStagesRejected(t *testing.T) {
	f := newFixture()
	f.addAppointment("a1", func(a *models.Appointment) { a.Status = models.StatusPending })

	_, err := f.workflow.Transition(context.Background(), "a1", models.StatusInProgress, techActor, "")
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.StatusPending, transitionErr.From)
	assert.Equal(t, models.StatusInProgress, transitionErr.To)

	// The appointment is untouched.
	appt, err := f.appts.GetByID("a1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.Empty(t, appt.History)
}

func TestTransitionRoleEnforcement(t *testing.T) {
	f := newFixture()
	f.addAppointment("a1", func(a *models.Appointment) { a.Status = models.StatusPending })

	var transitionErr *InvalidTransitionError
	_, err := f.workflow.Transition(context.Background(), "a1", models.StatusConfirmed, customerActor, "")
	require.ErrorAs(t, err, &transitionErr, "customers cannot confirm")

	_, err = f.workflow.Transition(context.Background(), "a1", models.StatusConfirmed, techActor, "")
	require.ErrorAs(t, err, &transitionErr, "technicians cannot confirm")

	_, err = f.workflow.Transition(context.Background(), "a1", models.StatusConfirmed, staffActor, "")
	require.NoError(t, err)
}

func TestTransitionTerminalStatesAreClosed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	var transitionErr *InvalidTransitionError

	for _, status := range []models.AppointmentStatus{
		models.StatusCancelled, models.StatusNoShow, models.StatusInvoiced,
	} {
		id := "a-" + string(status)
		f.addAppointment(id, func(a *models.Appointment) { a.Status = status })
		_, err := f.workflow.Transition(ctx, id, models.StatusConfirmed, adminActor, "")
		require.ErrorAs(t, err, &transitionErr, "from %s", status)
		_, err = f.workflow.Transition(ctx, id, models.StatusCancelled, adminActor, "")
		require.ErrorAs(t, err, &transitionErr, "cancel from %s", status)
	}

	// Completed is terminal for everything except invoicing.
	f.addAppointment("done", func(a *models.Appointment) { a.Status = models.StatusCompleted })
	_, err := f.workflow.Transition(ctx, "done", models.StatusCancelled, adminActor, "")
	require.ErrorAs(t, err, &transitionErr)
	appt, err := f.workflow.Transition(ctx, "done", models.StatusInvoiced, adminActor, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvoiced, appt.Status)
}

func TestCancelFromAnyActiveState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, status := range []models.AppointmentStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusCustomerArrived,
		models.StatusReceptionCreated, models.StatusReceptionApproved,
		models.StatusInProgress, models.StatusPartsRequested, models.StatusRescheduled,
	} {
		id := "a-" + string(status)
		f.addAppointment(id, func(a *models.Appointment) { a.Status = status })
		appt, err := f.workflow.Transition(ctx, id, models.StatusCancelled, staffActor, "customer called")
		require.NoError(t, err, "cancel from %s", status)
		assert.Equal(t, models.StatusCancelled, appt.Status)
	}
}

func TestCancelOwnershipGuard(t *testing.T) {
	f := newFixture()
	f.addAppointment("a1", func(a *models.Appointment) { a.CustomerID = "cust-1" })

	stranger := models.Actor{ID: "cust-2", Role: models.RoleCustomer}
	_, err := f.workflow.Transition(context.Background(), "a1", models.StatusCancelled, stranger, "")
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	appt, err := f.workflow.Transition(context.Background(), "a1", models.StatusCancelled, customerActor, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, appt.Status)
}

func TestCancelReleasesTechnicianWorkload(t *testing.T) {
	f := newFixture()
	f.addTechnician("t1", func(tech *models.Technician) { tech.WorkloadPercent = 40 })
	f.addAppointment("a1", func(a *models.Appointment) {
		a.TechnicianID = "t1"
		a.DurationMinutes = 60
	})

	_, err := f.workflow.Transition(context.Background(), "a1", models.StatusCancelled, staffActor, "")
	require.NoError(t, err)

	tech, err := f.techs.GetByID("t1")
	require.NoError(t, err)
	assert.Equal(t, 40-workloadDelta(60), tech.WorkloadPercent)
}

func TestTransitionToRescheduledRejected(t *testing.T) {
	f := newFixture()
	f.addAppointment("a1", nil)

	_, err := f.workflow.Transition(context.Background(), "a1", models.StatusRescheduled, staffActor, "")
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestArrivalDayGuard(t *testing.T) {
	f := newFixture()
	f.addAppointment("a1", func(a *models.Appointment) {
		a.Status = models.StatusConfirmed
		a.Date = "2026-09-03"
	})

	// Two days early.
	_, err := f.workflow.Transition(context.Background(), "a1", models.StatusCustomerArrived, staffActor, "")
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	f.workflow.AllowEarlyArrival = true
	appt, err := f.workflow.Transition(context.Background(), "a1", models.StatusCustomerArrived, staffActor, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCustomerArrived, appt.Status)

	// On the day itself no override is needed.
	f2 := newFixture()
	f2.now = time.Date(2026, 9, 3, 8, 0, 0, 0, time.UTC)
	f2.addAppointment("a1", func(a *models.Appointment) { a.Status = models.StatusConfirmed })
	_, err = f2.workflow.Transition(context.Background(), "a1", models.StatusCustomerArrived, staffActor, "")
	require.NoError(t, err)
}

func TestInspectionGuard(t *testing.T) {
	f := newFixture()
	f.addAppointment("a1", func(a *models.Appointment) { a.Status = models.StatusReceptionCreated })

	submitted := false
	f.workflow.InspectionSubmitted = func(string) bool { return submitted }

	_, err := f.workflow.Transition(context.Background(), "a1", models.StatusReceptionApproved, staffActor, "")
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	submitted = true
	appt, err := f.workflow.Transition(context.Background(), "a1", models.StatusReceptionApproved, staffActor, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceptionApproved, appt.Status)
}

func TestStartWorkRequiresAssignedTechnician(t *testing.T) {
	f := newFixture()
	f.addTechnician("t1", nil)
	f.addTechnician("t2", nil)
	f.addAppointment("a1", func(a *models.Appointment) {
		a.Status = models.StatusReceptionApproved
		a.TechnicianID = "t1"
	})

	other := models.Actor{ID: "t2", Role: models.RoleTechnician}
	_, err := f.workflow.Transition(context.Background(), "a1", models.StatusInProgress, other, "")
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	appt, err := f.workflow.Transition(context.Background(), "a1", models.StatusInProgress, techActor, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, appt.Status)
}

func TestPartsRequestedRoundTrip(t *testing.T) {
	f := newFixture()
	f.addTechnician("t1", nil)
	f.addAppointment("a1", func(a *models.Appointment) {
		a.Status = models.StatusInProgress
		a.TechnicianID = "t1"
	})
	ctx := context.Background()

	appt, err := f.workflow.Transition(ctx, "a1", models.StatusPartsRequested, techActor, "awaiting brake pads")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPartsRequested, appt.Status)

	appt, err = f.workflow.Transition(ctx, "a1", models.StatusInProgress, staffActor, "parts arrived")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, appt.Status)
	assert.Equal(t, "parts arrived", appt.History[len(appt.History)-1].Notes)
}

func TestReconcileAutoStartIsIdempotent(t *testing.T) {
	f := newFixture()
	f.addTechnician("t1", nil)
	f.addAppointment("a1", func(a *models.Appointment) {
		a.Status = models.StatusReceptionApproved
		a.TechnicianID = "t1"
	})
	ctx := context.Background()

	appt, err := f.workflow.GetReconciled(ctx, "a1", techActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, appt.Status)
	require.Len(t, appt.History, 1)
	assert.Equal(t, models.RoleSystem, appt.History[0].ActorRole)

	// A second observation changes nothing.
	again, err := f.workflow.GetReconciled(ctx, "a1", techActor)
	require.NoError(t, err)
	assert.Equal(t, appt.Version, again.Version)
	assert.Len(t, again.History, 1)
}

func TestReconcileOnlyForAssignedTechnician(t *testing.T) {
	f := newFixture()
	f.addTechnician("t1", nil)
	f.addAppointment("a1", func(a *models.Appointment) {
		a.Status = models.StatusReceptionApproved
		a.TechnicianID = "t1"
	})
	ctx := context.Background()

	appt, err := f.workflow.GetReconciled(ctx, "a1", staffActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceptionApproved, appt.Status, "staff observation does not start work")

	other := models.Actor{ID: "t9", Role: models.RoleTechnician}
	appt, err = f.workflow.GetReconciled(ctx, "a1", other)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceptionApproved, appt.Status)

	f.workflow.AutoStartEnabled = false
	appt, err = f.workflow.GetReconciled(ctx, "a1", techActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceptionApproved, appt.Status, "auto-start disabled by policy")
}

func TestNoShowSweep(t *testing.T) {
	f := newFixture()
	f.addAppointment("late", func(a *models.Appointment) {
		a.Status = models.StatusConfirmed
		a.Start = 8 * 60
		a.End = 9 * 60
	})
	f.addAppointment("upcoming", func(a *models.Appointment) {
		a.Status = models.StatusConfirmed
		a.Start = 15 * 60
		a.End = 16 * 60
	})
	f.addAppointment("active", func(a *models.Appointment) {
		a.Status = models.StatusInProgress
		a.Start = 8 * 60
		a.End = 9 * 60
	})

	// 11:00 with a 60 minute grace: only the 08:00 confirmed booking is overdue.
	swept, err := f.workflow.SweepNoShows(context.Background(), "2026-09-03", 11*60, 60)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	late, _ := f.appts.GetByID("late")
	assert.Equal(t, models.StatusNoShow, late.Status)
	assert.Equal(t, models.RoleSystem, late.History[len(late.History)-1].ActorRole)

	upcoming, _ := f.appts.GetByID("upcoming")
	assert.Equal(t, models.StatusConfirmed, upcoming.Status)
	active, _ := f.appts.GetByID("active")
	assert.Equal(t, models.StatusInProgress, active.Status)
}

func TestTransitionHistoryRecordsActorAndTimestamp(t *testing.T) {
	f := newFixture()
	f.addAppointment("a1", func(a *models.Appointment) { a.Status = models.StatusPending })

	appt, err := f.workflow.Transition(context.Background(), "a1", models.StatusConfirmed, staffActor, "phone confirmation")
	require.NoError(t, err)

	entry := appt.History[len(appt.History)-1]
	assert.Equal(t, models.StatusConfirmed, entry.Status)
	assert.Equal(t, "staff-1", entry.ActorID)
	assert.Equal(t, models.RoleStaff, entry.ActorRole)
	assert.Equal(t, "phone confirmation", entry.Notes)
	assert.Equal(t, fixtureNow.UTC(), entry.Timestamp)
}
