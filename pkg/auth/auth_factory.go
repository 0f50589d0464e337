package auth

import (
	"go.uber.org/zap"
)

// Authenticator bundles the key cache with the validator that reads from it
type Authenticator struct {
	Keys      *KeyCache
	Validator TokenValidator
}

// NewAuthenticatorFromConfig validates config and wires the key cache and
// validator. metrics and snapshots may be nil.
func NewAuthenticatorFromConfig(config OidcConfig, logger *zap.Logger, metrics *Metrics, snapshots SnapshotStore) (*Authenticator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := []KeyCacheOption{WithMetrics(metrics)}
	if snapshots != nil {
		opts = append(opts, WithSnapshotStore(snapshots))
	}

	keys := NewKeyCache(config, logger, opts...)
	validator := NewTokenValidator(config, keys, logger, WithValidatorMetrics(metrics))

	return &Authenticator{
		Keys:      keys,
		Validator: validator,
	}, nil
}
