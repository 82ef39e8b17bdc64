package main

import (
	"hrdash/cmd/internal/domain/sqlite"
	"hrdash/cmd/internal/domain/sqlite/repository"
	"hrdash/cmd/internal/integration/webhook"
	"hrdash/cmd/internal/routes"
	"hrdash/cmd/internal/service"
	"hrdash/cmd/internal/utils/validators"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	validate := validator.New()
	registerValidators(validate)

	err := godotenv.Load()
	if err != nil {
		log.Warnf("no .env file loaded: %v", err)
	}

	// Init SQLite
	dbPath := envOr("DB_PATH", "./database.db")
	db, err := sqlite.Init(dbPath)
	if err != nil {
		log.Fatal("failed to initialize database", err)
	}

	// Outbound delivery relay
	deliveryClient := webhook.InitClient()

	// Getting repositories
	employeeRepo := repository.NewEmployeeRepository(db)
	eventRepo := repository.NewEventRepository(db)
	ptoRepo := repository.NewPTORepository(db)
	auditRepo := repository.NewAuditRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	hoursRepo := repository.NewBusinessHoursRepository(db)

	// Getting services
	employeeService := service.NewEmployeeService(employeeRepo)
	eventService := service.NewEventService(eventRepo, auditRepo, validate)
	availabilityService := service.NewAvailabilityService(eventRepo, hoursRepo, validate)
	ptoService := service.NewPTOService(ptoRepo, employeeRepo, hoursRepo, auditRepo, validate)
	notificationService := service.NewNotificationService(
		outboxRepo, eventRepo, deliveryClient, validate,
		os.Getenv("DELIVERY_WEBHOOK_URL"), envOr("OUTBOX_RETRY_MODE", service.RetryModeNewEntry))

	// Getting routes
	employeeRoutes := routes.NewEmployeeDefault(employeeService)
	eventRoutes := routes.NewEventDefault(eventService)
	availabilityRoutes := routes.NewAvailabilityDefault(availabilityService)
	ptoRoutes := routes.NewPTODefault(ptoService)
	notificationRoutes := routes.NewNotificationDefault(notificationService)

	e := echo.New()
	e.Use(middleware.CORS())

	// Employees (read-only directory)
	e.GET("/api/employees", employeeRoutes.GetEmployees)
	e.GET("/api/employees/:id", employeeRoutes.GetEmployee)

	// Calendar events
	e.GET("/api/calendar/events", eventRoutes.GetEvents)
	e.POST("/api/calendar/events", eventRoutes.CreateEvent)
	e.GET("/api/calendar/events/:id", eventRoutes.GetEvent)
	e.PATCH("/api/calendar/events/:id", eventRoutes.UpdateEvent)
	e.POST("/api/calendar/events/:id/confirm", eventRoutes.ConfirmEvent)
	e.DELETE("/api/calendar/events/:id", eventRoutes.CancelEvent)
	e.GET("/api/calendar/events/:id/audit", eventRoutes.GetEventAudit)

	// Scheduling grid and availability
	e.GET("/api/calendar/slots", availabilityRoutes.GetSlots)
	e.POST("/api/calendar/availability", availabilityRoutes.CheckAvailability)

	// PTO ledger
	e.POST("/api/pto", ptoRoutes.SubmitRequest)
	e.GET("/api/pto", ptoRoutes.GetRequests)
	e.GET("/api/pto/:id", ptoRoutes.GetRequest)
	e.POST("/api/pto/:id/approve", ptoRoutes.ApproveRequest)
	e.POST("/api/pto/:id/reject", ptoRoutes.RejectRequest)
	e.POST("/api/pto/:id/cancel", ptoRoutes.CancelRequest)
	e.GET("/api/pto/:id/audit", ptoRoutes.GetRequestAudit)

	// Notification outbox
	e.POST("/api/notifications", notificationRoutes.SendNotification)
	e.GET("/api/notifications", notificationRoutes.GetNotifications)
	e.POST("/api/notifications/:id/resend", notificationRoutes.ResendNotification)

	err = e.Start(envOr("LISTEN_ADDR", ":6060"))
	if err != nil {
		e.Logger.Fatal(err)
	}
}

func registerValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("iso8601", validators.IsIso8601)
	_ = validate.RegisterValidation("isodate", validators.IsIsoDate)
	_ = validate.RegisterValidation("hourminute", validators.IsHourMinute)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
