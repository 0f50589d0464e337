package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setOIDCEnv(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "https://idp.example.com/realms/tasks")
	t.Setenv("OIDC_CLIENT_ID", "task-api")
	t.Setenv("OIDC_JWKS_URL", "https://idp.example.com/realms/tasks/protocol/openid-connect/certs")
}

func TestLoad_Defaults(t *testing.T) {
	setOIDCEnv(t)

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, 10*time.Second, cfg.OIDC.FetchTimeout)
	assert.Equal(t, time.Duration(0), cfg.OIDC.ClockSkew)
	assert.Equal(t, uint32(5), cfg.OIDC.BreakerThreshold)
	assert.Equal(t, 5*time.Second, cfg.OIDC.BreakerCooldown)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Redis.SnapshotTTL)
	assert.Equal(t, "*", cfg.CORS.AllowOrigins)
	assert.False(t, cfg.IsDevelopment())

	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	setOIDCEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("APP_ENV", "development")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OIDC_FETCH_TIMEOUT", "3s")
	t.Setenv("OIDC_CLOCK_SKEW", "30s")
	t.Setenv("OIDC_BREAKER_THRESHOLD", "0")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("JWKS_SNAPSHOT_TTL", "1h")

	cfg := Load()

	assert.Equal(t, "8081", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 3*time.Second, cfg.OIDC.FetchTimeout)
	assert.Equal(t, 30*time.Second, cfg.OIDC.ClockSkew)
	assert.Equal(t, uint32(0), cfg.OIDC.BreakerThreshold)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Redis.SnapshotTTL)

	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	setOIDCEnv(t)
	t.Setenv("OIDC_FETCH_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "-1")
	t.Setenv("REDIS_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.OIDC.FetchTimeout)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.False(t, cfg.Redis.Enabled)
}

func TestValidate(t *testing.T) {
	t.Run("missing OIDC settings", func(t *testing.T) {
		cfg := Load()
		cfg.OIDC.Issuer = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad log level", func(t *testing.T) {
		setOIDCEnv(t)
		cfg := Load()
		cfg.LogLevel = "verbose"
		assert.Error(t, cfg.Validate())
	})

	t.Run("redis enabled without host", func(t *testing.T) {
		setOIDCEnv(t)
		cfg := Load()
		cfg.Redis.Enabled = true
		cfg.Redis.Host = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("non numeric port", func(t *testing.T) {
		setOIDCEnv(t)
		cfg := Load()
		cfg.Port = "http"
		assert.Error(t, cfg.Validate())
	})
}
