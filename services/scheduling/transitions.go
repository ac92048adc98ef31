package scheduling

import (
	"voltserve/models"
)

// transitionRule is one cell of the (current status x requested status)
// matrix: who may trigger it and which guard must hold.
type transitionRule struct {
	roles []models.Role
	guard func(w *WorkflowService, appt *models.Appointment, actor models.Actor) error
}

func roleAllowed(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func guardArrivalDay(w *WorkflowService, appt *models.Appointment, _ models.Actor) error {
	today := w.now().Format("2006-01-02")
	if appt.Date <= today || w.AllowEarlyArrival {
		return nil
	}
	return &InvalidTransitionError{
		From:   appt.Status,
		To:     models.StatusCustomerArrived,
		Reason: "scheduled date is not today and early arrival is disabled",
	}
}

func guardInspectionSubmitted(w *WorkflowService, appt *models.Appointment, _ models.Actor) error {
	if w.InspectionSubmitted == nil || w.InspectionSubmitted(appt.ID) {
		return nil
	}
	return &InvalidTransitionError{
		From:   appt.Status,
		To:     models.StatusReceptionApproved,
		Reason: "inspection record not fully submitted",
	}
}

func guardAssignedTechnician(_ *WorkflowService, appt *models.Appointment, actor models.Actor) error {
	if actor.Role == models.RoleSystem {
		return nil
	}
	if appt.TechnicianID != "" && actor.ID == appt.TechnicianID {
		return nil
	}
	return &InvalidTransitionError{
		From:   appt.Status,
		To:     models.StatusInProgress,
		Reason: "only the assigned technician may start work",
	}
}

func guardCustomerOwnsAppointment(_ *WorkflowService, appt *models.Appointment, actor models.Actor) error {
	if actor.Role != models.RoleCustomer || actor.ID == appt.CustomerID {
		return nil
	}
	return &InvalidTransitionError{
		From:   appt.Status,
		To:     models.StatusCancelled,
		Reason: "customers may only cancel their own appointments",
	}
}

var (
	staffAdmin       = []models.Role{models.RoleStaff, models.RoleAdmin}
	staffTechAdmin   = []models.Role{models.RoleStaff, models.RoleTechnician, models.RoleAdmin}
	techStaff        = []models.Role{models.RoleTechnician, models.RoleStaff}
	technicianSystem = []models.Role{models.RoleTechnician, models.RoleSystem}
	staffSystem      = []models.Role{models.RoleStaff, models.RoleSystem}
	cancelRoles      = []models.Role{models.RoleStaff, models.RoleAdmin, models.RoleCustomer}
	noShowRoles      = []models.Role{models.RoleStaff, models.RoleAdmin, models.RoleSystem}
)

// transitionTable is the full legal-transition matrix. Statuses absent as a
// key are terminal: nothing is reachable from them.
var transitionTable = map[models.AppointmentStatus]map[models.AppointmentStatus]transitionRule{
	models.StatusPending: {
		models.StatusConfirmed: {roles: staffAdmin},
	},
	models.StatusConfirmed: {
		models.StatusCustomerArrived: {roles: staffTechAdmin, guard: guardArrivalDay},
	},
	models.StatusCustomerArrived: {
		models.StatusReceptionCreated: {roles: techStaff},
	},
	models.StatusReceptionCreated: {
		models.StatusReceptionApproved: {roles: staffAdmin, guard: guardInspectionSubmitted},
	},
	models.StatusReceptionApproved: {
		models.StatusInProgress: {roles: technicianSystem, guard: guardAssignedTechnician},
	},
	models.StatusInProgress: {
		models.StatusPartsRequested: {roles: []models.Role{models.RoleTechnician}},
		models.StatusCompleted:      {roles: []models.Role{models.RoleTechnician}},
	},
	models.StatusPartsRequested: {
		models.StatusInProgress: {roles: staffSystem},
	},
	models.StatusRescheduled: {
		models.StatusConfirmed: {roles: staffAdmin},
	},
}

// lookupTransition resolves the rule for a requested change, folding in the
// side branches available from every non-terminal state. Invoicing is the one
// edge leaving a terminal status: a completed appointment can still be
// invoiced, but never cancelled or rescheduled.
func lookupTransition(from, to models.AppointmentStatus) (transitionRule, bool) {
	if from == models.StatusCompleted && to == models.StatusInvoiced {
		return transitionRule{roles: staffAdmin}, true
	}
	if from.IsTerminal() {
		return transitionRule{}, false
	}
	switch to {
	case models.StatusCancelled:
		return transitionRule{roles: cancelRoles, guard: guardCustomerOwnsAppointment}, true
	case models.StatusNoShow:
		return transitionRule{roles: noShowRoles}, true
	}
	rules, ok := transitionTable[from]
	if !ok {
		return transitionRule{}, false
	}
	rule, ok := rules[to]
	return rule, ok
}
