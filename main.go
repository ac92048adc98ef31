package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voltserve/config"
	"voltserve/cron"
	"voltserve/database"
	appointmentRepoPkg "voltserve/database/repository/appointment"
	centerRepoPkg "voltserve/database/repository/center"
	catalogRepoPkg "voltserve/database/repository/servicecatalog"
	technicianRepoPkg "voltserve/database/repository/technician"
	"voltserve/handlers"
	"voltserve/middleware"
	"voltserve/routes"
	"voltserve/services/notification"
	"voltserve/services/scheduling"
	"voltserve/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitLockCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	apptRepo := appointmentRepoPkg.NewMongoAppointmentRepo()
	techRepo := technicianRepoPkg.NewMongoTechnicianRepo()
	catalogRepo := catalogRepoPkg.NewMongoCatalogRepo()
	centerRepo := centerRepoPkg.NewMongoCenterRepo()

	if m, ok := apptRepo.(*appointmentRepoPkg.MongoAppointmentRepo); ok {
		if err := m.EnsureIndexes(); err != nil {
			logger.Sugar().Fatalf("main: failed to create appointment indexes: %v", err)
		}
	}

	// services.
	notificationService := &notification.LogNotificationService{Logger: logger}

	policy := scheduling.Policy{
		GranularityMin:       config.AppConfig.SlotGranularityMin,
		MinLeadTimeMin:       config.AppConfig.MinLeadTimeMin,
		AllowSpillover:       config.AppConfig.AllowSpillover,
		AutoStartEnabled:     config.AppConfig.AutoStartEnabled,
		LockTTL:              time.Duration(config.AppConfig.BookingLockTTLSec) * time.Second,
		AvailabilityCacheTTL: time.Duration(config.AppConfig.AvailabilityCacheSec) * time.Second,
	}

	schedulingEngine := &scheduling.DefaultSchedulingEngine{
		Appointments: apptRepo,
		Technicians:  techRepo,
		Catalog:      catalogRepo,
		Centers:      centerRepo,
		Locker:       &scheduling.RedisSlotLocker{Locker: &utils.Locker{Client: utils.GetLockClient()}},
		Sequencer:    &scheduling.RedisSequencer{Client: utils.GetLockClient()},
		Cache:        utils.GetCacheClient(),
		Policy:       policy,
	}

	workflowService := &scheduling.WorkflowService{
		Appointments:     apptRepo,
		Technicians:      techRepo,
		Notifier:         notificationService,
		AutoStartEnabled: policy.AutoStartEnabled,
	}

	reminderScheduler := cron.NewReminderScheduler()
	cron.InitSchedulingWorker(workflowService, apptRepo, notificationService)

	availabilityHandler := handlers.NewAvailabilityHandler(schedulingEngine, logger)
	appointmentHandler := handlers.NewAppointmentHandler(schedulingEngine, workflowService, apptRepo, reminderScheduler, logger)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo)
	technicianHandler := handlers.NewTechnicianHandler(techRepo)
	centerHandler := handlers.NewCenterHandler(centerRepo)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Availability endpoints.
		GetSlotsHandler:        availabilityHandler.GetSlotsHandler,
		CheckConflictHandler:   availabilityHandler.CheckConflictHandler,
		RankTechniciansHandler: availabilityHandler.RankTechniciansHandler,

		// Appointment endpoints.
		BookAppointmentHandler:       appointmentHandler.BookHandler,
		GetAppointmentHandler:        appointmentHandler.GetHandler,
		AppointmentHistoryHandler:    appointmentHandler.HistoryHandler,
		ListMyAppointmentsHandler:    appointmentHandler.ListMineHandler,
		ListCenterAppointments:       appointmentHandler.ListByCenterHandler,
		ListTechnicianAppointments:   appointmentHandler.ListByTechnicianHandler,
		TransitionAppointmentHandler: appointmentHandler.TransitionHandler,
		CancelAppointmentHandler:     appointmentHandler.CancelHandler,
		AssignTechnicianHandler:      appointmentHandler.AssignHandler,
		RescheduleHandler:            appointmentHandler.RescheduleHandler,

		// Catalog endpoints.
		ListServicesHandler:  catalogHandler.ListServicesHandler,
		GetServiceHandler:    catalogHandler.GetServiceHandler,
		CreateServiceHandler: catalogHandler.CreateServiceHandler,
		UpdateServiceHandler: catalogHandler.UpdateServiceHandler,
		DeleteServiceHandler: catalogHandler.DeleteServiceHandler,

		// Technician roster endpoints.
		ListTechniciansHandler:     technicianHandler.ListByCenterHandler,
		GetTechnicianHandler:       technicianHandler.GetHandler,
		CreateTechnicianHandler:    technicianHandler.CreateHandler,
		UpdateTechnicianHandler:    technicianHandler.UpdateHandler,
		SetTechnicianStatusHandler: technicianHandler.SetStatusHandler,

		// Center endpoints.
		ListCentersHandler:  centerHandler.ListHandler,
		GetCenterHandler:    centerHandler.GetHandler,
		CreateCenterHandler: centerHandler.CreateHandler,
		UpdateCenterHandler: centerHandler.UpdateHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		database.MongoClient,
		utils.GetCacheClient(),
		utils.GetLockClient(),
		utils.GetQueueClient(),
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
