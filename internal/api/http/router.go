package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/scamguard/support-service/internal/api/http/handlers"
	"github.com/scamguard/support-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Webhooks       *handlers.WebhooksHandler
	Templates      *handlers.TemplatesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Webhooks and dashboard submissions are
// public; ticket administration requires a staff token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/staff/login", cfg.Auth.StaffLogin)

	webhooks := app.Group("/webhooks")
	webhooks.Post("/email", cfg.Webhooks.Email)
	webhooks.Post("/whatsapp", cfg.Webhooks.WhatsApp)

	app.Post("/tickets", cfg.Tickets.CreateTicket)

	staff := app.Group("", cfg.AuthMiddleware.Handle)
	staff.Get("/tickets", cfg.Tickets.ListTickets)
	staff.Get("/tickets/:id", cfg.Tickets.GetTicket)
	staff.Get("/tickets/:id/assignments", cfg.Tickets.ListAssignments)
	staff.Post("/tickets/:id/responses", cfg.Tickets.AddResponse)
	staff.Post("/tickets/:id/resolve", cfg.Tickets.ResolveTicket)
	staff.Post("/tickets/:id/close", cfg.Tickets.CloseTicket)

	staff.Get("/templates", cfg.Templates.List)
	staff.Post("/templates", cfg.Templates.Create)
	staff.Get("/templates/:id", cfg.Templates.Get)
	staff.Patch("/templates/:id", cfg.Templates.Update)
}
