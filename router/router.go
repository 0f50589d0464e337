package router

import (
	"task-api/internal/handlers"
	"task-api/internal/middleware"

	_ "task-api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware, gatherer prometheus.Gatherer) {
	// Probes
	app.Get("/health", handlers.HealthCheck)
	app.Get("/healthz", handlers.LivenessCheck)
	app.Get("/readyz", handlers.ReadinessCheck)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")

	// Task routes
	tasks := api.Group("/tasks", authMiddleware.RequireAuth())
	tasks.Get("/", handlers.ListTasks)
	tasks.Post("/", handlers.CreateTask)

	// Auth routes
	api.Post("/auth/login", handlers.Login)

	// Root routes
	app.Get("/", handlers.Home)
	app.Get("/ping", handlers.Ping)
}
