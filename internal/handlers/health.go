package handlers

import (
	"time"

	"task-api/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	startTime     = time.Now()
	healthService services.HealthService
)

// SetHealthService sets the health service instance
func SetHealthService(hs services.HealthService) {
	healthService = hs
}

// HealthCheck - plain-text probe kept for existing load balancers
// @Summary Health check
// @Description Returns OK while the process is up
// @Tags Health
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func HealthCheck(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// ReadinessCheck - Production-ready readiness check with dependency validation
// @Summary Readiness check
// @Description Reports whether verification keys are cached and Redis is reachable
// @Tags Health
// @Produce json
// @Success 200 {object} services.ReadinessCheckResult
// @Failure 503 {object} services.ReadinessCheckResult
// @Router /readyz [get]
func ReadinessCheck(c *fiber.Ctx) error {
	traceID := getTraceID(c)

	if healthService == nil {
		zapLogger.Error("Health service not initialized",
			zap.String("trace_id", traceID),
		)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "error",
			"timestamp": time.Now().UTC(),
			"error":     "health service not initialized",
			"trace_id":  traceID,
		})
	}

	result := healthService.ReadinessCheck(c.UserContext())

	httpStatus := fiber.StatusOK
	if result.Status != "ok" {
		httpStatus = fiber.StatusServiceUnavailable
		zapLogger.Warn("Readiness check failed",
			zap.String("trace_id", traceID),
			zap.String("status", result.Status),
		)
	}

	return c.Status(httpStatus).JSON(result)
}

// LivenessCheck - Fast liveness check
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Router /healthz [get]
func LivenessCheck(c *fiber.Ctx) error {
	if healthService == nil {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"uptime":    time.Since(startTime).String(),
		})
	}

	return c.JSON(healthService.LivenessCheck())
}
