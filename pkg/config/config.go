package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"task-api/pkg/auth"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`
	AppEnv   string `validate:"required"`
	OIDC     auth.OidcConfig
	Redis    RedisConfig
	CORS     CORSConfig
}

type RedisConfig struct {
	Enabled     bool
	Host        string `validate:"required_if=Enabled true"`
	Port        string `validate:"required_if=Enabled true"`
	Password    string
	DB          int           `validate:"gte=0"`
	SnapshotTTL time.Duration `validate:"gte=0"`
}

type CORSConfig struct {
	AllowOrigins string
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		AppEnv:   getEnv("APP_ENV", "production"),
		OIDC: auth.OidcConfig{
			Issuer:           getEnv("OIDC_ISSUER", ""),
			ClientID:         getEnv("OIDC_CLIENT_ID", ""),
			JWKSURL:          getEnv("OIDC_JWKS_URL", ""),
			FetchTimeout:     getEnvAsDuration("OIDC_FETCH_TIMEOUT", auth.DefaultFetchTimeout),
			ClockSkew:        getEnvAsDuration("OIDC_CLOCK_SKEW", 0),
			BreakerThreshold: uint32(getEnvAsInt("OIDC_BREAKER_THRESHOLD", auth.DefaultBreakerThreshold)),
			BreakerCooldown:  getEnvAsDuration("OIDC_BREAKER_COOLDOWN", auth.DefaultBreakerCooldown),
		},
		Redis: RedisConfig{
			Enabled:     getEnvAsBool("REDIS_ENABLED", false),
			Host:        getEnv("REDIS_HOST", "localhost"),
			Port:        getEnv("REDIS_PORT", "6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			SnapshotTTL: getEnvAsDuration("JWKS_SNAPSHOT_TTL", 24*time.Hour),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
	}
}

var validate = validator.New()

// Validate checks the whole configuration, including the OIDC block
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return c.OIDC.Validate()
}

// IsDevelopment reports whether the app runs with development defaults
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue >= 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
