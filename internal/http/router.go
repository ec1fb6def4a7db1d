package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crm-backend/internal/handlers"
	"crm-backend/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	totpHandler *handlers.TOTPHandler,
	leadHandler *handlers.LeadHandler,
	conversationHandler *handlers.ConversationHandler,
	interactionHandler *handlers.InteractionHandler,
	taskHandler *handlers.TaskHandler,
	appointmentHandler *handlers.AppointmentHandler,
	vehicleHandler *handlers.VehicleHandler,
	qualificationHandler *handlers.QualificationHandler,
	notificationHandler *handlers.NotificationHandler,
	reportHandler *handlers.ReportHandler,
	settingHandler *handlers.SettingHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/totp/verify", authHandler.VerifyTOTP).Methods("POST")

	// Protected API routes - Own profile
	profileAPI := r.PathPrefix("/api/auth").Subrouter()
	profileAPI.Use(authMiddleware.Authenticate)
	profileAPI.HandleFunc("/me", userHandler.Me).Methods("GET")
	profileAPI.HandleFunc("/profile", userHandler.UpdateProfile).Methods("PATCH")
	profileAPI.HandleFunc("/update-password", userHandler.UpdatePassword).Methods("POST")
	profileAPI.HandleFunc("/totp/setup", totpHandler.Setup).Methods("POST")
	profileAPI.HandleFunc("/totp/confirm", totpHandler.Confirm).Methods("POST")
	profileAPI.HandleFunc("/totp/disable", totpHandler.Disable).Methods("POST")

	// Protected API routes - Team management
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", userHandler.ListUsers).Methods("GET")
	usersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.CreateUser)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.UpdateUser)).ServeHTTP).Methods("PUT")
	usersAPI.HandleFunc("/{id}/toggle-active", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.ToggleActiveStatus)).ServeHTTP).Methods("PATCH")

	// Protected API routes - Leads and the pipeline board
	leadsAPI := r.PathPrefix("/api/leads").Subrouter()
	leadsAPI.Use(authMiddleware.Authenticate)
	leadsAPI.HandleFunc("", leadHandler.ListLeads).Methods("GET")
	leadsAPI.HandleFunc("", leadHandler.CreateLead).Methods("POST")
	leadsAPI.HandleFunc("/create", conversationHandler.ConvertToLead).Methods("POST")
	leadsAPI.HandleFunc("/board", leadHandler.Board).Methods("GET")
	leadsAPI.HandleFunc("/search", leadHandler.SearchLeads).Methods("GET")
	leadsAPI.HandleFunc("/{id}", leadHandler.GetLead).Methods("GET")
	leadsAPI.HandleFunc("/{id}", leadHandler.UpdateLead).Methods("PATCH")
	leadsAPI.HandleFunc("/{id}/stage", leadHandler.MoveStage).Methods("PATCH")
	leadsAPI.HandleFunc("/{id}/notes", interactionHandler.AddNote).Methods("POST")
	leadsAPI.HandleFunc("/{id}/tasks", taskHandler.ListByLead).Methods("GET")
	leadsAPI.HandleFunc("/{id}/appointments", appointmentHandler.ListByLead).Methods("GET")
	leadsAPI.HandleFunc("/{id}/qualification", qualificationHandler.GetForLead).Methods("GET")
	leadsAPI.HandleFunc("/{id}/qualification", qualificationHandler.Save).Methods("PUT")

	// Protected API routes - Call logging workflow
	interactionsAPI := r.PathPrefix("/api/interactions").Subrouter()
	interactionsAPI.Use(authMiddleware.Authenticate)
	interactionsAPI.HandleFunc("/log", interactionHandler.LogCall).Methods("POST")
	interactionsAPI.HandleFunc("/lead/{lead_id}", interactionHandler.ListByLead).Methods("GET")

	// Protected API routes - Chat conversations
	conversationsAPI := r.PathPrefix("/api/conversations").Subrouter()
	conversationsAPI.Use(authMiddleware.Authenticate)
	conversationsAPI.HandleFunc("", conversationHandler.ListConversations).Methods("GET")
	conversationsAPI.HandleFunc("/{id}", conversationHandler.GetConversation).Methods("GET")

	// Protected API routes - Tasks
	tasksAPI := r.PathPrefix("/api/tasks").Subrouter()
	tasksAPI.Use(authMiddleware.Authenticate)
	tasksAPI.HandleFunc("", taskHandler.ListTasks).Methods("GET")
	tasksAPI.HandleFunc("", taskHandler.CreateTask).Methods("POST")
	tasksAPI.HandleFunc("/{id}", taskHandler.CompleteTask).Methods("PATCH")

	// Protected API routes - Appointments
	appointmentsAPI := r.PathPrefix("/api/appointments").Subrouter()
	appointmentsAPI.Use(authMiddleware.Authenticate)
	appointmentsAPI.HandleFunc("", appointmentHandler.ListAppointments).Methods("GET")
	appointmentsAPI.HandleFunc("", appointmentHandler.CreateAppointment).Methods("POST")
	appointmentsAPI.HandleFunc("/{id}", appointmentHandler.UpdateAppointment).Methods("PATCH")
	appointmentsAPI.HandleFunc("/{id}/outcome", appointmentHandler.RecordOutcome).Methods("POST")

	// Protected API routes - Vehicle inventory (managers curate it)
	vehiclesAPI := r.PathPrefix("/api/vehicles").Subrouter()
	vehiclesAPI.Use(authMiddleware.Authenticate)
	vehiclesAPI.HandleFunc("", vehicleHandler.ListVehicles).Methods("GET")
	vehiclesAPI.HandleFunc("", authMiddleware.RequireManager(http.HandlerFunc(vehicleHandler.CreateVehicle)).ServeHTTP).Methods("POST")
	vehiclesAPI.HandleFunc("/{id}", vehicleHandler.GetVehicle).Methods("GET")
	vehiclesAPI.HandleFunc("/{id}", authMiddleware.RequireManager(http.HandlerFunc(vehicleHandler.UpdateVehicle)).ServeHTTP).Methods("PATCH")
	vehiclesAPI.HandleFunc("/{id}/images", authMiddleware.RequireManager(http.HandlerFunc(vehicleHandler.UploadImage)).ServeHTTP).Methods("POST")

	// Protected API routes - Notification feed
	notificationsAPI := r.PathPrefix("/api/notifications").Subrouter()
	notificationsAPI.Use(authMiddleware.Authenticate)
	notificationsAPI.HandleFunc("", notificationHandler.Feed).Methods("GET")

	// Protected API routes - Reports (managers and admins)
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.HandleFunc("", authMiddleware.RequireManager(http.HandlerFunc(reportHandler.Summary)).ServeHTTP).Methods("GET")
	reportsAPI.HandleFunc("/export", authMiddleware.RequireManager(http.HandlerFunc(reportHandler.ExportPDF)).ServeHTTP).Methods("GET")

	// Protected API routes - System Settings
	settingsAPI := r.PathPrefix("/api/settings").Subrouter()
	settingsAPI.Use(authMiddleware.Authenticate)
	settingsAPI.HandleFunc("", settingHandler.ListSettings).Methods("GET")
	settingsAPI.HandleFunc("/{key}", settingHandler.GetSetting).Methods("GET")
	settingsAPI.HandleFunc("/{key}", authMiddleware.RequireAdmin(http.HandlerFunc(settingHandler.UpdateSetting)).ServeHTTP).Methods("PUT")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
