package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sanskruthi/fest-service/internal/api/http/handlers"
	"github.com/sanskruthi/fest-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Event          *handlers.EventHandler
	Auth           *handlers.AuthHandler
	Registrations  *handlers.RegistrationsHandler
	Bookings       *handlers.BookingsHandler
	Consoles       *handlers.ConsolesHandler
	AttendanceLog  *handlers.AttendanceLogHandler
	AuthMiddleware *auth.AuthMiddleware
	// UploadsDir is served at /uploads when photos are stored locally.
	UploadsDir string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/event", cfg.Event.Get)
	if cfg.UploadsDir != "" {
		app.Static("/uploads", cfg.UploadsDir)
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/google", cfg.Auth.Google)
	authGroup.Post("/admin", cfg.Auth.Admin)

	registrations := app.Group("/registrations", cfg.AuthMiddleware.Handle, auth.RequireAttendee())
	registrations.Post("", cfg.Registrations.Create)
	registrations.Get("/me", cfg.Registrations.Me)
	registrations.Get("/me/ticket.png", cfg.Registrations.Ticket)

	bookings := app.Group("/bookings", cfg.AuthMiddleware.Handle, auth.RequireAttendee())
	bookings.Post("", cfg.Bookings.Create)
	bookings.Get("", cfg.Bookings.List)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/metrics", cfg.Health.Metrics)
	admin.Get("/roster", cfg.Consoles.Roster)
	admin.Get("/attendance-log", cfg.AttendanceLog.List)
	admin.Get("/registrations", cfg.Registrations.List)
	admin.Post("/consoles", cfg.Consoles.Open)
	admin.Get("/consoles/:id", cfg.Consoles.Get)
	admin.Delete("/consoles/:id", cfg.Consoles.Close)
	admin.Post("/consoles/:id/frames", cfg.Consoles.Frame)
	admin.Post("/consoles/:id/confirm", cfg.Consoles.Confirm)
	admin.Post("/consoles/:id/reset", cfg.Consoles.Reset)
	admin.Post("/consoles/:id/retry", cfg.Consoles.Retry)
	admin.Post("/consoles/:id/mode", cfg.Consoles.Mode)
}
