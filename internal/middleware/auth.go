package middleware

import (
	"strings"

	"task-api/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	claimsKey = "claims"
	userIDKey = "user_id"
)

type AuthMiddleware struct {
	validator auth.TokenValidator
	logger    *zap.Logger
}

func NewAuthMiddleware(validator auth.TokenValidator, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// RequireAuth rejects requests without a valid bearer token. Every failure
// gets the same 401 body; the reason only goes to the log.
func (am *AuthMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := getTraceID(c)

		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			am.logger.Warn("Missing or malformed authorization header",
				zap.String("trace_id", traceID),
				zap.String("path", c.Path()),
			)
			return unauthorized(c, traceID)
		}

		claims, err := am.validator.Validate(c.UserContext(), token)
		if err != nil {
			am.logger.Warn("Token validation failed",
				zap.String("trace_id", traceID),
				zap.String("reason", auth.Reason(err)),
				zap.Error(err),
			)
			return unauthorized(c, traceID)
		}

		c.Locals(claimsKey, claims)
		c.Locals(userIDKey, claims.Subject)

		am.logger.Debug("User authenticated",
			zap.String("trace_id", traceID),
			zap.String("user_id", claims.Subject),
			zap.String("username", claims.Username()),
		)

		return c.Next()
	}
}

// ClaimsFromCtx returns the claims stored by RequireAuth
func ClaimsFromCtx(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// bearerToken extracts the token from "Bearer <token>". The scheme is
// matched exactly.
func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *fiber.Ctx, traceID string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":    "unauthorized",
		"trace_id": traceID,
	})
}

// getTraceID - Context'ten trace_id'yi alır
func getTraceID(c *fiber.Ctx) string {
	if traceID, ok := c.Locals("trace_id").(string); ok {
		return traceID
	}
	return "unknown"
}
