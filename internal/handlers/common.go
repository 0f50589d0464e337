package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var zapLogger = zap.NewNop()

// SetLogger - Handler'lar için logger'ı set eder
func SetLogger(l *zap.Logger) {
	if l != nil {
		zapLogger = l
	}
}

// getTraceID - Context'ten trace_id'yi alır
func getTraceID(c *fiber.Ctx) string {
	if traceID, ok := c.Locals("trace_id").(string); ok {
		return traceID
	}
	return "unknown"
}

// Home - service banner and endpoint list
// @Summary Home
// @Description Service banner and endpoint list
// @Tags General
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func Home(c *fiber.Ctx) error {
	traceID := getTraceID(c)

	zapLogger.Debug("Home endpoint called",
		zap.String("trace_id", traceID),
	)

	return c.JSON(fiber.Map{
		"message":   "Task API",
		"service":   "task-api",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC(),
		"endpoints": fiber.Map{
			"health":    "/health",
			"liveness":  "/healthz",
			"readiness": "/readyz",
			"metrics":   "/metrics",
			"tasks":     "/api/tasks",
			"login":     "/api/auth/login",
		},
		"documentation": fiber.Map{
			"swagger_ui": "/swagger/index.html",
		},
		"trace_id": traceID,
	})
}

// Ping - Basit ping endpoint
// @Summary Ping endpoint
// @Tags General
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /ping [get]
func Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":   "pong",
		"timestamp": time.Now().UTC(),
		"trace_id":  getTraceID(c),
	})
}
