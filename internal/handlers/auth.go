package handlers

import (
	"time"

	"task-api/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// placeholderToken is returned instead of a real session token. Clients
// authenticate with tokens issued by the identity provider.
const placeholderToken = "not-implemented"

// Login - credential login placeholder
// @Summary Login placeholder
// @Description Accepts the demo credentials only and returns a placeholder token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/login [post]
func Login(c *fiber.Ctx) error {
	traceID := getTraceID(c)

	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "Invalid JSON format",
			"trace_id": traceID,
		})
	}

	if req.Username != "admin" || req.Password != "password" {
		zapLogger.Warn("Login rejected",
			zap.String("trace_id", traceID),
			zap.String("username", req.Username),
		)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":    "unauthorized",
			"trace_id": traceID,
		})
	}

	now := time.Now().UTC()
	return c.JSON(models.LoginResponse{
		Token: placeholderToken,
		User: models.User{
			ID:        uuid.New(),
			Username:  req.Username,
			Email:     "admin@example.com",
			CreatedAt: now,
			UpdatedAt: now,
		},
	})
}
