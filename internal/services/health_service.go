package services

import (
	"context"
	"fmt"
	"time"

	"task-api/pkg/auth"

	"go.uber.org/zap"
)

// HealthService provides health check functionality
type HealthService interface {
	LivenessCheck() *HealthCheckResult
	ReadinessCheck(ctx context.Context) *ReadinessCheckResult
}

// HealthCheckResult represents a simple health check result
type HealthCheckResult struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

// ReadinessCheckResult represents detailed readiness check results
type ReadinessCheckResult struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentStatus `json:"components"`
}

// ComponentStatus represents the status of a system component
type ComponentStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// KeyStats is satisfied by *auth.KeyCache
type KeyStats interface {
	Stats() auth.KeyCacheStats
}

// Pinger is satisfied by the Redis snapshot store
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthService struct {
	keys      KeyStats
	redis     Pinger
	logger    *zap.Logger
	startTime time.Time
}

// NewHealthService creates a new health service instance. redis may be nil
// when snapshots are disabled.
func NewHealthService(keys KeyStats, redis Pinger, logger *zap.Logger) HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &healthService{
		keys:      keys,
		redis:     redis,
		logger:    logger,
		startTime: time.Now(),
	}
}

// LivenessCheck performs a basic liveness check
func (hs *healthService) LivenessCheck() *HealthCheckResult {
	return &HealthCheckResult{
		Status:    "ok",
		Timestamp: time.Now(),
		Uptime:    time.Since(hs.startTime).String(),
	}
}

// ReadinessCheck reports the key cache and, when configured, Redis. Only an
// empty key cache makes the service not ready: Redis is used for warm starts.
func (hs *healthService) ReadinessCheck(ctx context.Context) *ReadinessCheckResult {
	components := make(map[string]ComponentStatus)
	overallStatus := "ok"

	jwksStatus := hs.checkKeyCache()
	components["jwks"] = jwksStatus
	if jwksStatus.Status != "ok" {
		overallStatus = "degraded"
	}

	if hs.redis != nil {
		components["redis"] = hs.checkRedis(ctx)
	}

	return &ReadinessCheckResult{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Components: components,
	}
}

func (hs *healthService) checkKeyCache() ComponentStatus {
	if hs.keys == nil {
		return ComponentStatus{
			Status: "error",
			Error:  "key cache not initialized",
		}
	}

	stats := hs.keys.Stats()
	details := map[string]any{
		"key_count": stats.KeyCount,
		"refreshes": stats.Refreshes,
		"failures":  stats.Failures,
	}
	if !stats.FetchedAt.IsZero() {
		details["fetched_at"] = stats.FetchedAt.UTC()
	}

	if stats.KeyCount == 0 {
		hs.logger.Warn("Readiness: no verification keys cached", zap.String("jwks_url", stats.URL))
		return ComponentStatus{
			Status:  "error",
			Error:   "no verification keys cached",
			Details: details,
		}
	}

	return ComponentStatus{
		Status:  "ok",
		Message: fmt.Sprintf("%d verification keys cached", stats.KeyCount),
		Details: details,
	}
}

func (hs *healthService) checkRedis(ctx context.Context) ComponentStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := hs.redis.Ping(ctx); err != nil {
		hs.logger.Warn("Redis health check failed", zap.Error(err))
		return ComponentStatus{
			Status: "warning",
			Error:  err.Error(),
		}
	}

	return ComponentStatus{
		Status:  "ok",
		Message: "Redis connection healthy",
	}
}
