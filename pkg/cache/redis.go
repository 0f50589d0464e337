package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task-api/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// JWKSSnapshotKey is where the last good JWKS document is kept
const JWKSSnapshotKey = "auth:jwks:snapshot"

// ErrSnapshotMissing is returned when no snapshot has been stored yet
var ErrSnapshotMissing = errors.New("jwks snapshot not found")

// Connect opens a Redis client and pings it
func Connect(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)

	logger.Info("Connecting to Redis",
		zap.String("host", cfg.Host),
		zap.String("port", cfg.Port),
		zap.Int("db", cfg.DB),
	)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		logger.Error("Redis connection failed", zap.Error(err))
		return nil, err
	}

	logger.Info("Redis connection established")
	return client, nil
}

// JWKSSnapshotStore keeps a copy of the issuer's key set document in Redis
type JWKSSnapshotStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewJWKSSnapshotStore creates a store writing under JWKSSnapshotKey. A zero
// ttl keeps the snapshot until it is overwritten.
func NewJWKSSnapshotStore(client *redis.Client, ttl time.Duration) *JWKSSnapshotStore {
	return &JWKSSnapshotStore{
		client: client,
		key:    JWKSSnapshotKey,
		ttl:    ttl,
	}
}

// SaveJWKS overwrites the stored document
func (s *JWKSSnapshotStore) SaveJWKS(ctx context.Context, doc []byte) error {
	if err := s.client.Set(ctx, s.key, doc, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store jwks snapshot: %w", err)
	}
	return nil
}

// LoadJWKS returns the stored document
func (s *JWKSSnapshotStore) LoadJWKS(ctx context.Context) ([]byte, error) {
	doc, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load jwks snapshot: %w", err)
	}
	return doc, nil
}

// Ping reports whether Redis is reachable
func (s *JWKSSnapshotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
