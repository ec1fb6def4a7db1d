package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"crm-backend/internal/alerts"
	"crm-backend/internal/auth"
	"crm-backend/internal/cache"
	"crm-backend/internal/config"
	"crm-backend/internal/database"
	"crm-backend/internal/db"
	"crm-backend/internal/handlers"
	"crm-backend/internal/health"
	h "crm-backend/internal/http"
	"crm-backend/internal/middleware"
	"crm-backend/internal/monitoring"
	"crm-backend/internal/repositories"
	"crm-backend/internal/services"
	"crm-backend/internal/storage"
	"crm-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (login will use bcrypt only)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations from the embedded filesystem
	log.Println("Running database migrations...")
	migrator := database.NewMigratorWithFS(pool, migrations.FS, ".")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Start the ops monitoring server in background
	monServer := monitoring.NewMonitoringServer(pool, cfg.Server.MonitoringPort)
	go monServer.Start()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	leadRepo := repositories.NewLeadRepository(pool)
	conversationRepo := repositories.NewConversationRepository(pool)
	interactionRepo := repositories.NewInteractionRepository(pool)
	taskRepo := repositories.NewTaskRepository(pool)
	appointmentRepo := repositories.NewAppointmentRepository(pool)
	vehicleRepo := repositories.NewVehicleRepository(pool)
	settingRepo := repositories.NewSettingRepository(pool)
	totpRepo := repositories.NewTOTPRepository(pool)
	qualificationRepo := repositories.NewQualificationRepository(pool)
	reportRepo := repositories.NewReportRepository(pool)

	// New-lead alerts always reach the ops dashboard; the webhook is
	// added when configured
	alerter := alerts.Multi{monServer}
	if cfg.Alerts.WebhookURL != "" {
		alerter = append(alerter, alerts.NewWebhookDispatcher(cfg.Alerts.WebhookURL))
		log.Println("[Alerts] New-lead webhook enabled")
	} else {
		log.Println("[Alerts] No webhook configured, new-lead alerts go to the ops dashboard only")
	}

	// Vehicle image storage (S3-compatible)
	imageStore, err := storage.NewS3Store(context.Background(), cfg)
	if err != nil {
		log.Fatalf("S3 storage init failed: %v", err)
	}

	// Initialize services
	userService := services.NewUserService(userRepo, totpRepo, jwtManager)
	totpService := services.NewTOTPService(totpRepo, userRepo, jwtManager)
	leadService := services.NewLeadService(leadRepo, taskRepo, interactionRepo, alerter)
	conversationService := services.NewConversationService(conversationRepo, leadRepo, taskRepo, alerter)
	interactionService := services.NewInteractionService(interactionRepo, leadRepo, taskRepo)
	taskService := services.NewTaskService(taskRepo)
	appointmentService := services.NewAppointmentService(appointmentRepo, leadRepo, taskRepo, interactionRepo)
	vehicleService := services.NewVehicleService(vehicleRepo, imageStore)
	settingService := services.NewSettingService(settingRepo)
	qualificationService := services.NewQualificationService(qualificationRepo, leadRepo)
	reportService := services.NewReportService(reportRepo)
	notificationService := services.NewNotificationService(services.NotificationSources{
		Conversations: conversationRepo,
		Leads:         leadRepo,
		Appointments:  appointmentRepo,
		Tasks:         taskRepo,
		LeadNames:     leadRepo,
	})

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, totpService)
	userHandler := handlers.NewUserHandler(userService)
	totpHandler := handlers.NewTOTPHandler(totpService)
	leadHandler := handlers.NewLeadHandler(leadService)
	conversationHandler := handlers.NewConversationHandler(conversationService)
	interactionHandler := handlers.NewInteractionHandler(interactionService)
	taskHandler := handlers.NewTaskHandler(taskService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	qualificationHandler := handlers.NewQualificationHandler(qualificationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	reportHandler := handlers.NewReportHandler(reportService)
	settingHandler := handlers.NewSettingHandler(settingService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := h.NewRouter(
		authHandler,
		userHandler,
		totpHandler,
		leadHandler,
		conversationHandler,
		interactionHandler,
		taskHandler,
		appointmentHandler,
		vehicleHandler,
		qualificationHandler,
		notificationHandler,
		reportHandler,
		settingHandler,
		healthHandler,
		authMiddleware,
	)

	// Wrap with panic recovery, metrics and CORS middleware
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("CRM server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
