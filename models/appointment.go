package models

import "time"

// AppointmentStatus is the workflow state of an appointment.
type AppointmentStatus string

const (
	StatusPending           AppointmentStatus = "pending"
	StatusConfirmed         AppointmentStatus = "confirmed"
	StatusCustomerArrived   AppointmentStatus = "customer_arrived"
	StatusReceptionCreated  AppointmentStatus = "reception_created"
	StatusReceptionApproved AppointmentStatus = "reception_approved"
	StatusInProgress        AppointmentStatus = "in_progress"
	StatusPartsRequested    AppointmentStatus = "parts_requested"
	StatusCompleted         AppointmentStatus = "completed"
	StatusInvoiced          AppointmentStatus = "invoiced"
	StatusCancelled         AppointmentStatus = "cancelled"
	StatusNoShow            AppointmentStatus = "no_show"
	StatusRescheduled       AppointmentStatus = "rescheduled"
)

// IsTerminal reports whether the status permits no further transitions.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow, StatusInvoiced:
		return true
	}
	return false
}

// Priority orders appointments for staff attention; it does not affect
// slot allocation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Role identifies the kind of actor driving a transition.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleStaff      Role = "staff"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
	RoleSystem     Role = "system"
)

// Actor is the authenticated principal behind a request.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// ServiceLine is one ordered service on an appointment, denormalized from the
// catalog at booking time so later catalog edits do not rewrite history.
type ServiceLine struct {
	ServiceID       string          `bson:"service_id" json:"serviceId"`
	Name            string          `bson:"name" json:"name"`
	Category        ServiceCategory `bson:"category" json:"category"`
	Quantity        int             `bson:"quantity" json:"quantity"`
	DurationMinutes int             `bson:"duration_minutes" json:"durationMinutes"`
	Price           float64         `bson:"price" json:"price"`
}

// WorkflowEntry is one immutable record in the appointment's audit trail.
// Timestamps are stored in UTC.
type WorkflowEntry struct {
	Status    AppointmentStatus `bson:"status" json:"status"`
	ActorID   string            `bson:"actor_id" json:"actorId"`
	ActorRole Role              `bson:"actor_role" json:"actorRole"`
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
	Notes     string            `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Appointment is the central scheduling entity. It is created by the booking
// transaction and mutated only through workflow transitions or reschedule;
// cancellation is a terminal status, never a deletion.
type Appointment struct {
	ID              string            `bson:"id" json:"id"`
	Number          string            `bson:"number" json:"number"` // APT-YYYYMMDD-NNN
	CenterID        string            `bson:"center_id" json:"centerId"`
	CustomerID      string            `bson:"customer_id" json:"customerId"`
	VehicleID       string            `bson:"vehicle_id" json:"vehicleId"`
	Services        []ServiceLine     `bson:"services" json:"services"`
	Date            string            `bson:"date" json:"date"` // YYYY-MM-DD
	Start           int               `bson:"start" json:"start"`
	End             int               `bson:"end" json:"end"`
	DurationMinutes int               `bson:"duration_minutes" json:"durationMinutes"`
	TechnicianID    string            `bson:"technician_id,omitempty" json:"technicianId,omitempty"`
	Priority        Priority          `bson:"priority" json:"priority"`
	Status          AppointmentStatus `bson:"status" json:"status"`
	History         []WorkflowEntry   `bson:"history" json:"history"`
	CustomerNotes   string            `bson:"customer_notes,omitempty" json:"customerNotes,omitempty"`
	SpilloverFlag   bool              `bson:"spillover_flag,omitempty" json:"spilloverFlag,omitempty"`
	TotalPrice      float64           `bson:"total_price" json:"totalPrice"`
	Version         int               `bson:"version" json:"version"`
	CreatedAt       time.Time         `bson:"created_at" json:"createdAt"`
}

// Overlaps reports whether the appointment's [start,end) range intersects the
// given range on the same date.
func (a *Appointment) Overlaps(date string, start, end int) bool {
	return a.Date == date && a.Start < end && start < a.End
}
