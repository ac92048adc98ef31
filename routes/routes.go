package routes

import (
	"net/http"
	"time"

	"voltserve/handlers"
	"voltserve/middleware"
	"voltserve/models"
	"voltserve/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCenterRoutes registers center, availability and roster endpoints.
func RegisterCenterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/centers")
	{
		api.Use(middleware.JWTAuthMiddleware())

		// Availability is readable by every authenticated role.
		api.GET("", hb.ListCentersHandler)
		api.GET("/:centerID", hb.GetCenterHandler)
		api.GET("/:centerID/slots", hb.GetSlotsHandler)
		api.POST("/:centerID/conflict-check", hb.CheckConflictHandler)

		// Ranking and schedules are operational views for center personnel.
		ops := api.Group("")
		ops.Use(middleware.RequireRoles(models.RoleStaff, models.RoleTechnician, models.RoleAdmin))
		ops.POST("/:centerID/technicians/rank", hb.RankTechniciansHandler)
		ops.GET("/:centerID/appointments", hb.ListCenterAppointments)
		ops.GET("/:centerID/technicians", hb.ListTechniciansHandler)

		// Center records are admin-managed.
		admin := api.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		admin.POST("", hb.CreateCenterHandler)
		admin.PUT("/:centerID", hb.UpdateCenterHandler)
	}
}

// RegisterAppointmentRoutes registers the booking and workflow endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.BookAppointmentHandler)
		api.GET("", hb.ListMyAppointmentsHandler)
		api.GET("/:id", hb.GetAppointmentHandler)
		api.GET("/:id/history", hb.AppointmentHistoryHandler)
		api.POST("/:id/transition", hb.TransitionAppointmentHandler)
		api.DELETE("/:id", hb.CancelAppointmentHandler)

		scheduleOps := api.Group("")
		scheduleOps.Use(middleware.RequireRoles(models.RoleStaff, models.RoleAdmin))
		scheduleOps.PUT("/:id/technician", hb.AssignTechnicianHandler)
		scheduleOps.PUT("/:id/schedule", hb.RescheduleHandler)
	}
}

// RegisterTechnicianRoutes registers roster management endpoints.
func RegisterTechnicianRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/technicians")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/:id", hb.GetTechnicianHandler)

		ops := api.Group("")
		ops.Use(middleware.RequireRoles(models.RoleStaff, models.RoleTechnician, models.RoleAdmin))
		ops.GET("/:id/appointments", hb.ListTechnicianAppointments)

		admin := api.Group("")
		admin.Use(middleware.RequireRoles(models.RoleStaff, models.RoleAdmin))
		admin.POST("", hb.CreateTechnicianHandler)
		admin.PUT("/:id", hb.UpdateTechnicianHandler)
		admin.PUT("/:id/status", hb.SetTechnicianStatusHandler)
	}
}

// RegisterCatalogRoutes registers service catalog endpoints.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("", hb.ListServicesHandler)
		api.GET("/:id", hb.GetServiceHandler)

		admin := api.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		admin.POST("", hb.CreateServiceHandler)
		admin.PUT("/:id", hb.UpdateServiceHandler)
		admin.DELETE("/:id", hb.DeleteServiceHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint. A degraded snapshot
// answers 503 so load balancers can rotate the instance out.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.CheckedAt.IsZero() && !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterCenterRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterTechnicianRoutes(r, hb)
	RegisterCatalogRoutes(r, hb)
}
