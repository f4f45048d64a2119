package handler

import (
	"database/sql"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"

	"stockflow/docs"
	"stockflow/internal/http/middleware"
	"stockflow/internal/logger"
	"stockflow/internal/service"
)

// Deps carries everything the HTTP layer needs. Metrics is optional.
type Deps struct {
	DB        *sql.DB
	Auth      service.AuthService
	Inventory service.InventoryService
	Orders    service.OrderService
	Dashboard service.DashboardService
	Settings  service.SettingsService
	Exports   service.ExportService
	Metrics   http.Handler
	Log       *logger.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Authenticated routes carry the auth middleware per route so unknown paths
// still fall through to 404.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", Liveness())
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics))
	}
	app.Get("/swagger/doc.json", swaggerDoc(docs.SwaggerInfo.ReadDoc()))
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Post("/auth/signup", SignUp(d.Auth))
	app.Post("/auth/login", Login(d.Auth))

	authed := middleware.RequireAuth(d.Auth, d.Log)

	app.Post("/auth/logout", authed, Logout(d.Auth))
	app.Get("/me", authed, Me(d.Auth))
	app.Get("/dashboard", authed, Dashboard(d.Dashboard))

	// Static segments before /skus/:id.
	app.Get("/skus", authed, ListSKUs(d.Inventory))
	app.Post("/skus", authed, CreateSKU(d.Inventory))
	app.Get("/skus/options", authed, SKUOptions(d.Inventory))
	app.Get("/skus/export", authed, ExportSKUs(d.Exports))
	app.Get("/skus/:id", authed, GetSKU(d.Inventory))
	app.Put("/skus/:id", authed, UpdateSKU(d.Inventory))
	app.Delete("/skus/:id", authed, DeleteSKU(d.Inventory))

	app.Get("/orders", authed, ListOrders(d.Orders))
	app.Post("/orders", authed, CreateOrder(d.Orders))
	app.Post("/orders/check", authed, CheckOrder(d.Orders))
	app.Get("/orders/export", authed, ExportOrders(d.Exports))
	app.Get("/orders/:id", authed, GetOrder(d.Orders))
	app.Post("/orders/:id/fulfill", authed, FulfillOrder(d.Orders))

	app.Get("/settings/profile", authed, GetProfile(d.Settings))
	app.Put("/settings/profile", authed, UpdateProfile(d.Settings))
	app.Put("/settings/password", authed, ChangePassword(d.Settings))
}

// swaggerDoc serves the API description rendered once at startup. Host and
// schemes stay empty so clients resolve paths against the serving origin.
func swaggerDoc(doc string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Type("json").SendString(doc)
	}
}
