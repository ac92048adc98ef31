package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Availability endpoints
	GetSlotsHandler        gin.HandlerFunc
	CheckConflictHandler   gin.HandlerFunc
	RankTechniciansHandler gin.HandlerFunc

	// Appointment endpoints
	BookAppointmentHandler       gin.HandlerFunc
	GetAppointmentHandler        gin.HandlerFunc
	AppointmentHistoryHandler    gin.HandlerFunc
	ListMyAppointmentsHandler    gin.HandlerFunc
	ListCenterAppointments       gin.HandlerFunc
	ListTechnicianAppointments   gin.HandlerFunc
	TransitionAppointmentHandler gin.HandlerFunc
	CancelAppointmentHandler     gin.HandlerFunc
	AssignTechnicianHandler      gin.HandlerFunc
	RescheduleHandler            gin.HandlerFunc

	// Catalog endpoints
	ListServicesHandler  gin.HandlerFunc
	GetServiceHandler    gin.HandlerFunc
	CreateServiceHandler gin.HandlerFunc
	UpdateServiceHandler gin.HandlerFunc
	DeleteServiceHandler gin.HandlerFunc

	// Technician roster endpoints
	ListTechniciansHandler     gin.HandlerFunc
	GetTechnicianHandler       gin.HandlerFunc
	CreateTechnicianHandler    gin.HandlerFunc
	UpdateTechnicianHandler    gin.HandlerFunc
	SetTechnicianStatusHandler gin.HandlerFunc

	// Center endpoints
	ListCentersHandler  gin.HandlerFunc
	GetCenterHandler    gin.HandlerFunc
	CreateCenterHandler gin.HandlerFunc
	UpdateCenterHandler gin.HandlerFunc
}
