package billing

import (
	"context"

	"github.com/rentroll/backend/internal/domain/billing"
)

// ConfirmationStore holds short-lived duplicate-override tokens. A
// submission that trips the duplicate guard stores a token here; the
// caller re-submits with the token to commit anyway. Implementations
// live in infrastructure (in-memory for a single node, Redis when the
// API runs replicated).
type ConfirmationStore interface {
	// Put stores an override token until it expires
	Put(ctx context.Context, token billing.OverrideToken) error
	// Take consumes a token by value. Returns shared.ErrNotFound for
	// unknown or expired tokens. A token can be taken only once.
	Take(ctx context.Context, token string) (*billing.OverrideToken, error)
}
