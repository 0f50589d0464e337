package auth

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultFetchTimeout     = 10 * time.Second
	DefaultBreakerThreshold = 5
	DefaultBreakerCooldown  = 5 * time.Second
)

// OidcConfig describes the single trusted issuer. It is supplied once at
// startup and never reloaded.
type OidcConfig struct {
	Issuer   string `validate:"required,url"`
	ClientID string `validate:"required"`
	JWKSURL  string `validate:"required,url"`

	// FetchTimeout bounds one JWKS fetch, including reading the body
	FetchTimeout time.Duration `validate:"gte=0"`

	// ClockSkew is the leeway applied to exp. Zero means strict.
	ClockSkew time.Duration `validate:"gte=0"`

	// BreakerThreshold is the number of consecutive fetch failures that open
	// the circuit. Zero disables the breaker.
	BreakerThreshold uint32

	// BreakerCooldown is how long an open circuit fails fast. The first miss
	// after it elapses gets one probe fetch.
	BreakerCooldown time.Duration `validate:"gte=0"`
}

var configValidator = validator.New()

// Validate checks that the required fields are present and well formed
func (c OidcConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid OIDC config: %w", err)
	}
	return nil
}

// withDefaults fills zero operational knobs with their defaults
func (c OidcConfig) withDefaults() OidcConfig {
	if c.FetchTimeout == 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.BreakerCooldown == 0 {
		c.BreakerCooldown = DefaultBreakerCooldown
	}
	return c
}
