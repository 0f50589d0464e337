package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// TokenValidator turns a bearer token into verified claims
type TokenValidator interface {
	Validate(ctx context.Context, tokenString string) (*Claims, error)
}

// ValidatorOption customizes the validator returned by NewTokenValidator
type ValidatorOption func(*tokenValidator)

// WithValidatorMetrics records validation outcomes into m
func WithValidatorMetrics(m *Metrics) ValidatorOption {
	return func(v *tokenValidator) { v.metrics = m }
}

// WithValidatorClock overrides the time used for exp checks
func WithValidatorClock(now func() time.Time) ValidatorOption {
	return func(v *tokenValidator) { v.now = now }
}

// tokenValidator implements TokenValidator. It holds no per-token state;
// the only shared mutable state lives in the KeyCache.
type tokenValidator struct {
	config  OidcConfig
	keys    *KeyCache
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

// NewTokenValidator creates a validator for the configured issuer
func NewTokenValidator(config OidcConfig, keys *KeyCache, logger *zap.Logger, opts ...ValidatorOption) TokenValidator {
	if logger == nil {
		logger = zap.NewNop()
	}

	v := &tokenValidator{
		config: config.withDefaults(),
		keys:   keys,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate verifies the token and returns its claims. Only RS256 is
// accepted; the token's own alg header is never used to pick the method.
// Audience is deliberately not checked.
func (v *tokenValidator) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	ctx, span := tracer.Start(ctx, "auth.Validate")
	defer span.End()

	claims, err := v.validate(ctx, tokenString)
	v.metrics.observeValidation(err)

	if err != nil {
		span.SetAttributes(attribute.String("auth.reason", Reason(err)))
		span.SetStatus(codes.Error, "token rejected")
		v.logger.Debug("Token validation failed",
			zap.String("reason", Reason(err)),
			zap.Error(err),
		)
		return nil, err
	}

	return claims, nil
}

func (v *tokenValidator) validate(ctx context.Context, tokenString string) (*Claims, error) {
	kid, err := peekKeyID(tokenString)
	if err != nil {
		return nil, err
	}

	publicKey, err := v.keys.GetOrRefresh(ctx, kid)
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.config.ClockSkew),
		jwt.WithTimeFunc(v.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no sub claim", ErrInvalidToken)
	}
	if claims.IssuedAt == 0 {
		return nil, fmt.Errorf("%w: token has no iat claim", ErrInvalidToken)
	}

	return claims, nil
}

// peekKeyID reads the kid from the header without verifying anything
func peekKeyID(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return "", fmt.Errorf("%w: %w", ErrMalformedToken, err)
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	kid, ok := token.Header["kid"].(string)
	if !ok || kid == "" {
		return "", ErrMissingKeyID
	}
	return kid, nil
}
