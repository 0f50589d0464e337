package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TraceID assigns every request a trace id, echoed in X-Trace-ID. An
// incoming X-Trace-ID header is reused.
func TraceID(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get("X-Trace-ID")
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.New().String()
		}
		c.Locals("trace_id", traceID)
		c.Set("X-Trace-ID", traceID)

		logger.Debug("Request started",
			zap.String("trace_id", traceID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)

		return c.Next()
	}
}
