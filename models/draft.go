package models

// ServiceRequest selects one catalog service with a quantity.
type ServiceRequest struct {
	ServiceID string `json:"serviceId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// BookingDraft is the client's booking submission, validated and committed by
// the booking transaction.
type BookingDraft struct {
	CenterID      string           `json:"centerId" binding:"required"`
	CustomerID    string           `json:"customerId"` // filled from the token for customer bookings
	VehicleID     string           `json:"vehicleId"`
	Services      []ServiceRequest `json:"services" binding:"required"`
	Date          string           `json:"date" binding:"required"` // YYYY-MM-DD
	Time          string           `json:"time" binding:"required"` // HH:mm
	TechnicianID  string           `json:"technicianId"`
	AutoAssign    bool             `json:"autoAssign"`
	Priority      Priority         `json:"priority"`
	CustomerNotes string           `json:"customerNotes"`
}
