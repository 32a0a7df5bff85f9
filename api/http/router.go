package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/docqa/api/http/handlers"
)

// Routes groups the handlers served by the API.
type Routes struct {
	Auth   *handlers.AuthHandler
	Chat   *handlers.ChatHandler
	Health *handlers.HealthHandler
	// RequireAuth guards /chat/.
	RequireAuth fiber.Handler
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, r Routes) {
	// Health and readiness endpoints for probes/monitoring
	app.Get("/health", r.Health.Health)
	app.Get("/ready", r.Health.Ready)

	app.Post("/signup", r.Auth.Signup)
	app.Post("/login", r.Auth.Login)

	app.Post("/chat/", r.RequireAuth, r.Chat.Chat)
}
