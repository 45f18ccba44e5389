package cache

import (
	"context"
	"sync"
	"time"

	appbilling "github.com/rentroll/backend/internal/application/billing"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/shared"
)

// InMemoryConfirmationStore holds duplicate-override tokens in a map.
// This is suitable for single-instance deployments and testing; a
// replicated API needs the Redis store so a token issued by one node
// can be redeemed on another.
type InMemoryConfirmationStore struct {
	mu        sync.Mutex
	tokens    map[string]billing.OverrideToken
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryConfirmationStore creates a new in-memory confirmation store.
// It starts a background goroutine to clean up expired tokens.
func NewInMemoryConfirmationStore() *InMemoryConfirmationStore {
	store := &InMemoryConfirmationStore{
		tokens:   make(map[string]billing.OverrideToken),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Put stores an override token until it expires
func (s *InMemoryConfirmationStore) Put(ctx context.Context, token billing.OverrideToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token.Token] = token
	return nil
}

// Take consumes a token by value. Returns shared.ErrNotFound for
// unknown or expired tokens; a token can be taken only once.
func (s *InMemoryConfirmationStore) Take(ctx context.Context, token string) (*billing.OverrideToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.tokens[token]
	if !exists {
		return nil, shared.ErrNotFound
	}
	delete(s.tokens, token)

	if stored.IsExpired(time.Now()) {
		return nil, shared.ErrNotFound
	}
	return &stored, nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (s *InMemoryConfirmationStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired tokens
func (s *InMemoryConfirmationStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired tokens from the store
func (s *InMemoryConfirmationStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, token := range s.tokens {
		if token.IsExpired(now) {
			delete(s.tokens, key)
		}
	}
}

// Size returns the number of tokens in the store (for testing/monitoring)
func (s *InMemoryConfirmationStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// Ensure InMemoryConfirmationStore implements ConfirmationStore
var _ appbilling.ConfirmationStore = (*InMemoryConfirmationStore)(nil)
