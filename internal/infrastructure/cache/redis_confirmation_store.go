package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appbilling "github.com/rentroll/backend/internal/application/billing"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisConfirmationStore holds duplicate-override tokens in Redis.
// This is suitable for distributed deployments where a token issued by
// one API instance may be redeemed on another.
type RedisConfirmationStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisConfirmationStore creates a new Redis-based confirmation store
func NewRedisConfirmationStore(cfg RedisConfig) (*RedisConfirmationStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisConfirmationStore{
		client:    client,
		keyPrefix: "billing:confirmation:",
	}, nil
}

// NewRedisConfirmationStoreWithClient creates a store with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisConfirmationStoreWithClient(client *redis.Client, keyPrefix string) *RedisConfirmationStore {
	if keyPrefix == "" {
		keyPrefix = "billing:confirmation:"
	}
	return &RedisConfirmationStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Put stores an override token with a TTL matching its expiry
func (s *RedisConfirmationStore) Put(ctx context.Context, token billing.OverrideToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode override token: %w", err)
	}

	if err := s.client.Set(ctx, s.keyPrefix+token.Token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store override token: %w", err)
	}
	return nil
}

// Take consumes a token by value. GETDEL makes the redeem atomic, so a
// token presented twice concurrently commits only once.
func (s *RedisConfirmationStore) Take(ctx context.Context, token string) (*billing.OverrideToken, error) {
	payload, err := s.client.GetDel(ctx, s.keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to take override token: %w", err)
	}

	var stored billing.OverrideToken
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode override token: %w", err)
	}
	if stored.IsExpired(time.Now()) {
		return nil, shared.ErrNotFound
	}
	return &stored, nil
}

// Close closes the Redis client
func (s *RedisConfirmationStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisConfirmationStore) GetClient() *redis.Client {
	return s.client
}

// Ensure RedisConfirmationStore implements ConfirmationStore
var _ appbilling.ConfirmationStore = (*RedisConfirmationStore)(nil)
