package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var tracer = otel.Tracer("task-api/pkg/auth")

// snapshotTimeout bounds one snapshot write
const snapshotTimeout = 2 * time.Second

// SnapshotStore keeps a copy of the last good JWKS document outside the
// process so a fresh instance can start verifying while the issuer is down.
type SnapshotStore interface {
	SaveJWKS(ctx context.Context, doc []byte) error
	LoadJWKS(ctx context.Context) ([]byte, error)
}

// KeyCacheStats is a point-in-time view of the cache
type KeyCacheStats struct {
	URL       string    `json:"url"`
	KeyCount  int       `json:"key_count"`
	FetchedAt time.Time `json:"fetched_at"`
	Refreshes uint64    `json:"refreshes"`
	Failures  uint64    `json:"failures"`
}

// KeyCacheOption customizes a KeyCache
type KeyCacheOption func(*KeyCache)

// WithFetcher replaces the HTTP fetcher
func WithFetcher(f Fetcher) KeyCacheOption {
	return func(c *KeyCache) { c.fetcher = f }
}

// WithSnapshotStore enables snapshot persistence for Warm
func WithSnapshotStore(s SnapshotStore) KeyCacheOption {
	return func(c *KeyCache) { c.snapshots = s }
}

// WithMetrics records refresh outcomes into m
func WithMetrics(m *Metrics) KeyCacheOption {
	return func(c *KeyCache) { c.metrics = m }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) KeyCacheOption {
	return func(c *KeyCache) { c.now = now }
}

// KeyCache maps key ids to RSA verification keys fetched from the issuer's
// JWKS endpoint. Entries never expire individually: a refresh replaces the
// whole map, and only after the new document was fetched and parsed.
type KeyCache struct {
	config    OidcConfig
	logger    *zap.Logger
	fetcher   Fetcher
	snapshots SnapshotStore
	metrics   *Metrics
	breaker   *gobreaker.CircuitBreaker
	now       func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time

	group     singleflight.Group
	refreshes atomic.Uint64
	failures  atomic.Uint64
}

// NewKeyCache creates an empty cache. Nothing is fetched until the first
// miss or an explicit Refresh/Warm.
func NewKeyCache(config OidcConfig, logger *zap.Logger, opts ...KeyCacheOption) *KeyCache {
	config = config.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &KeyCache{
		config: config,
		logger: logger,
		now:    time.Now,
		keys:   make(map[string]*rsa.PublicKey),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = NewHTTPFetcher(&http.Client{Timeout: config.FetchTimeout})
	}

	if config.BreakerThreshold > 0 {
		threshold := config.BreakerThreshold
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "jwks",
			MaxRequests: 1,
			Timeout:     config.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn("JWKS circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}

	return c
}

// Lookup returns the cached key for kid without any network call
func (c *KeyCache) Lookup(kid string) (*rsa.PublicKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key, ok := c.keys[kid]
	return key, ok
}

// GetOrRefresh returns the key for kid. A miss triggers one refresh followed
// by one more lookup. Concurrent misses share a single in-flight refresh.
// The snapshot of a miss-driven refresh is written in the background.
func (c *KeyCache) GetOrRefresh(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if key, ok := c.Lookup(kid); ok {
		return key, nil
	}

	c.logger.Debug("Key cache miss, refreshing JWKS", zap.String("kid", kid))

	// the shared refresh must not die with whichever request started it
	refreshCtx := context.WithoutCancel(ctx)
	_, refreshErr, _ := c.group.Do("refresh", func() (interface{}, error) {
		fetched, err := c.reload(refreshCtx)
		if err != nil {
			return nil, err
		}
		if c.snapshots != nil {
			go c.saveSnapshot(refreshCtx, fetched.doc)
		}
		return nil, nil
	})

	if key, ok := c.Lookup(kid); ok {
		return key, nil
	}

	if refreshErr != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrUnknownKey, kid, refreshErr)
	}
	return nil, fmt.Errorf("%w %s", ErrUnknownKey, kid)
}

// Refresh fetches the JWKS document and replaces the cache contents. On any
// failure the previous contents stay in place. The snapshot, if any, is
// written before Refresh returns.
func (c *KeyCache) Refresh(ctx context.Context) error {
	fetched, err := c.reload(ctx)
	if err != nil {
		return err
	}
	c.saveSnapshot(ctx, fetched.doc)
	return nil
}

func (c *KeyCache) reload(ctx context.Context) (*fetchedSet, error) {
	ctx, span := tracer.Start(ctx, "auth.Refresh",
		trace.WithAttributes(attribute.String("jwks.url", c.config.JWKSURL)),
	)
	defer span.End()

	c.refreshes.Add(1)
	fetched, count, err := c.refresh(ctx)
	c.metrics.observeRefresh(err)

	if err != nil {
		c.failures.Add(1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "jwks refresh failed")
		c.logger.Warn("JWKS refresh failed, keeping cached keys",
			zap.String("jwks_url", c.config.JWKSURL),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("jwks.key_count", count))
	return fetched, nil
}

type fetchedSet struct {
	doc []byte
	set *JwkSet
}

func (c *KeyCache) refresh(ctx context.Context) (*fetchedSet, int, error) {
	c.logger.Info("Fetching JWKS", zap.String("jwks_url", c.config.JWKSURL))

	fetchCtx, cancel := context.WithTimeout(ctx, c.config.FetchTimeout)
	defer cancel()

	fetched, err := c.fetch(fetchCtx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w from %s: %w", ErrFetch, c.config.JWKSURL, err)
	}

	count := c.install(fetched.set)
	c.logger.Info("JWKS fetched successfully", zap.Int("key_count", count))

	return fetched, count, nil
}

// saveSnapshot stores doc, bounded by snapshotTimeout. Failures are logged only.
func (c *KeyCache) saveSnapshot(ctx context.Context, doc []byte) {
	if c.snapshots == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	if err := c.snapshots.SaveJWKS(ctx, doc); err != nil {
		c.logger.Warn("Failed to store JWKS snapshot", zap.Error(err))
	}
}

// fetch downloads and parses the document, through the breaker when enabled.
// Parse failures count against the breaker like transport failures.
func (c *KeyCache) fetch(ctx context.Context) (*fetchedSet, error) {
	load := func() (interface{}, error) {
		doc, err := c.fetcher.Fetch(ctx, c.config.JWKSURL)
		if err != nil {
			return nil, err
		}
		set, err := ParseJwkSet(doc)
		if err != nil {
			return nil, err
		}
		return &fetchedSet{doc: doc, set: set}, nil
	}

	if c.breaker == nil {
		result, err := load()
		if err != nil {
			return nil, err
		}
		return result.(*fetchedSet), nil
	}

	result, err := c.breaker.Execute(load)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("JWKS endpoint unavailable: %w", err)
		}
		return nil, err
	}
	return result.(*fetchedSet), nil
}

// install derives keys off-lock and swaps the whole map in one step
func (c *KeyCache) install(set *JwkSet) int {
	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Kid == "" || !jwk.Usable() {
			c.logger.Debug("Skipping JWK without kid or RSA components",
				zap.String("kid", jwk.Kid),
				zap.String("kty", jwk.Kty),
			)
			continue
		}

		publicKey, err := jwk.PublicKey()
		if err != nil {
			c.logger.Warn("Failed to convert JWK to RSA public key",
				zap.String("kid", jwk.Kid),
				zap.Error(err),
			)
			continue
		}

		keys[jwk.Kid] = publicKey
		c.logger.Debug("Added public key",
			zap.String("kid", jwk.Kid),
			zap.String("alg", jwk.Alg),
		)
	}

	c.mu.Lock()
	c.keys = keys
	c.fetchedAt = c.now()
	c.mu.Unlock()

	return len(keys)
}

// Warm primes the cache at startup. When the issuer cannot be reached and a
// snapshot store is configured, the last stored document is installed.
func (c *KeyCache) Warm(ctx context.Context) error {
	err := c.Refresh(ctx)
	if err == nil || c.snapshots == nil {
		return err
	}
	if c.Stats().KeyCount > 0 {
		return err
	}

	doc, loadErr := c.snapshots.LoadJWKS(ctx)
	if loadErr != nil {
		return errors.Join(err, fmt.Errorf("JWKS snapshot unavailable: %w", loadErr))
	}

	set, parseErr := ParseJwkSet(doc)
	if parseErr != nil {
		return errors.Join(err, fmt.Errorf("JWKS snapshot unreadable: %w", parseErr))
	}

	count := c.install(set)
	c.logger.Warn("JWKS endpoint unreachable, started from snapshot",
		zap.Int("key_count", count),
		zap.NamedError("fetch_error", err),
	)
	return nil
}

// Stats reports the current cache state
func (c *KeyCache) Stats() KeyCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return KeyCacheStats{
		URL:       c.config.JWKSURL,
		KeyCount:  len(c.keys),
		FetchedAt: c.fetchedAt,
		Refreshes: c.refreshes.Load(),
		Failures:  c.failures.Load(),
	}
}
