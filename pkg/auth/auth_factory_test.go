package auth

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthenticatorFromConfig(t *testing.T) {
	server := newJWKSServer(t, testKeyID)
	snapshots := &memorySnapshots{}
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	authenticator, err := NewAuthenticatorFromConfig(testConfig(server.URL), nil, metrics, snapshots)
	require.NoError(t, err)

	require.NoError(t, authenticator.Keys.Warm(context.Background()))
	assert.Equal(t, 1, authenticator.Keys.Stats().KeyCount)

	stored, err := snapshots.LoadJWKS(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	claims, err := authenticator.Validator.Validate(context.Background(), createTestToken(t, createValidTestClaims(), testKeyID))
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.refreshes.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.validations.WithLabelValues("ok")))
	assert.Equal(t, 1, server.fetches())
}

func TestNewAuthenticatorFromConfig_InvalidConfig(t *testing.T) {
	_, err := NewAuthenticatorFromConfig(OidcConfig{Issuer: "not a url"}, nil, nil, nil)
	assert.Error(t, err)
}
