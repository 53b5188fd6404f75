package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crew-travel-service/internal/api/http/handlers"
	"github.com/spec-kit/crew-travel-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	FlightOrders   *handlers.OrdersHandler
	HotelOrders    *handlers.OrdersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	profile := authGroup.Group("", cfg.AuthMiddleware.Handle)
	profile.Get("/profile", cfg.Auth.GetProfile)
	profile.Put("/profile", cfg.Auth.UpdateProfile)
	profile.Post("/password/change", cfg.Auth.ChangePassword)

	registerOrderRoutes(app.Group("/flight-orders", cfg.AuthMiddleware.Handle), cfg.FlightOrders)
	registerOrderRoutes(app.Group("/hotel-orders", cfg.AuthMiddleware.Handle), cfg.HotelOrders)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	users.Get("/stats", cfg.Users.Stats)
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)
	users.Patch("/:id/status", cfg.Users.ToggleStatus)
}

// registerOrderRoutes wires the shared order surface for one kind. Static
// segments are registered before the :id parameter so /my and /stats do not
// resolve as order ids.
func registerOrderRoutes(group fiber.Router, handler *handlers.OrdersHandler) {
	group.Post("/", handler.Create)
	group.Get("/my", handler.ListMine)
	group.Get("/stats", auth.RequireAdmin(), handler.Stats)
	group.Get("/", auth.RequireAdmin(), handler.ListAll)
	group.Get("/:id", handler.GetOne)
	group.Put("/:id/status", auth.RequireAdmin(), handler.UpdateStatus)
}
