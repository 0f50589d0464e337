// @title Task API
// @version 1.0.0
// @description Task list API protected by OIDC bearer tokens verified against the issuer's JWKS
// @contact.name API Support
// @contact.email support@example.com
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:3000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-api/internal/handlers"
	"task-api/internal/middleware"
	"task-api/internal/services"
	"task-api/pkg/auth"
	"task-api/pkg/cache"
	"task-api/pkg/config"
	"task-api/pkg/logger"
	"task-api/router"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var zapLogger *zap.Logger

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg := config.Load()

	var err error
	zapLogger, err = logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatal("Logger could not be started: ", err)
	}
	defer zapLogger.Sync()

	if err := cfg.Validate(); err != nil {
		zapLogger.Fatal("Configuration invalid", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Redis is optional: it only holds the JWKS snapshot for warm starts
	var (
		snapshots   auth.SnapshotStore
		redisHealth services.Pinger
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = cache.Connect(ctx, cfg.Redis, zapLogger)
		cancel()
		if err != nil {
			zapLogger.Warn("Redis unavailable, JWKS snapshots disabled", zap.Error(err))
		} else {
			store := cache.NewJWKSSnapshotStore(redisClient, cfg.Redis.SnapshotTTL)
			snapshots = store
			redisHealth = store
		}
	}

	authenticator, err := auth.NewAuthenticatorFromConfig(cfg.OIDC, zapLogger, auth.NewMetrics(registry), snapshots)
	if err != nil {
		zapLogger.Fatal("Auth could not be configured", zap.Error(err))
	}

	// A cold cache is not fatal: the first request with a kid retries the fetch
	warmCtx, cancel := context.WithTimeout(context.Background(), cfg.OIDC.FetchTimeout+time.Second)
	if err := authenticator.Keys.Warm(warmCtx); err != nil {
		zapLogger.Warn("JWKS warm-up failed, keys will be fetched on demand", zap.Error(err))
	}
	cancel()

	zapLogger.Info("Auth initialized",
		zap.String("issuer", cfg.OIDC.Issuer),
		zap.String("jwks_url", cfg.OIDC.JWKSURL),
		zap.Int("keys", authenticator.Keys.Stats().KeyCount),
	)

	handlers.SetLogger(zapLogger)
	handlers.SetTaskService(services.NewTaskService(zapLogger, services.DemoTasks()...))
	handlers.SetHealthService(services.NewHealthService(authenticator.Keys, redisHealth, zapLogger))

	app := fiber.New(fiber.Config{
		AppName:      "task-api",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Trace-ID",
	}))
	app.Use(middleware.TraceID(zapLogger))

	router.SetupRoutes(app, middleware.NewAuthMiddleware(authenticator.Validator, zapLogger), registry)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zapLogger.Fatal("Server could not be started", zap.Error(err))
		}
	}()

	zapLogger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	<-c
	zapLogger.Info("Server shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zapLogger.Error("Server shutdown failed", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("Redis close failed", zap.Error(err))
		}
	}
}

// Error handler
func errorHandler(c *fiber.Ctx, err error) error {
	traceID := getTraceID(c)

	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code >= fiber.StatusInternalServerError {
		zapLogger.Error("Request error",
			zap.String("trace_id", traceID),
			zap.Error(err),
			zap.String("path", c.Path()),
		)
	}

	return c.Status(code).JSON(fiber.Map{
		"error":    message,
		"trace_id": traceID,
	})
}

// Trace ID helper
func getTraceID(c *fiber.Ctx) string {
	if traceID, ok := c.Locals("trace_id").(string); ok {
		return traceID
	}
	return "unknown"
}
