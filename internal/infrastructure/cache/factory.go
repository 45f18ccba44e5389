package cache

import (
	"fmt"

	appbilling "github.com/rentroll/backend/internal/application/billing"
	"github.com/rentroll/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ConfirmationStoreFactory creates confirmation stores based on configuration
type ConfirmationStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ConfirmationStoreFactoryOption is a functional option for configuring the factory
type ConfirmationStoreFactoryOption func(*ConfirmationStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ConfirmationStoreFactoryOption {
	return func(f *ConfirmationStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory
// store when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ConfirmationStoreFactoryOption {
	return func(f *ConfirmationStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewConfirmationStoreFactory creates a new factory
func NewConfirmationStoreFactory(cfg config.RedisConfig, opts ...ConfirmationStoreFactoryOption) *ConfirmationStoreFactory {
	f := &ConfirmationStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based confirmation store
func (f *ConfirmationStoreFactory) CreateRedisStore() (appbilling.ConfirmationStore, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	store, err := NewRedisConfirmationStore(redisCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis confirmation store: %w", err)
	}

	return store, nil
}

// CreateInMemoryStore creates an in-memory confirmation store.
// WARNING: in-memory tokens do not cross process boundaries, so a
// duplicate override issued by one instance cannot be redeemed on
// another.
func (f *ConfirmationStoreFactory) CreateInMemoryStore() appbilling.ConfirmationStore {
	return NewInMemoryConfirmationStore()
}

// CreateStore creates a confirmation store based on the configuration.
// With Redis disabled it goes straight to the in-memory store; with
// Redis enabled it tries Redis first and falls back to in-memory only
// when allowed.
func (f *ConfirmationStoreFactory) CreateStore() (appbilling.ConfirmationStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory confirmation store")
		return f.CreateInMemoryStore(), nil
	}

	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis confirmation store")
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for confirmation tokens but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory confirmation store. "+
		"Override tokens will not be shared across instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
