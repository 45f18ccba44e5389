package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/shared"
)

// DuplicateKeyFunc derives the identity key duplicate detection
// compares on. Two values with equal keys are considered duplicates.
type DuplicateKeyFunc[T any] func(T) string

// DuplicateGuard flags submissions that look like accidental
// re-entries. Detection never blocks a legitimate re-submission: the
// caller surfaces the matches, and an explicit confirmation on the
// second attempt commits anyway.
type DuplicateGuard[T any] struct {
	key DuplicateKeyFunc[T]
}

// NewDuplicateGuard creates a guard using the given key function
func NewDuplicateGuard[T any](key DuplicateKeyFunc[T]) *DuplicateGuard[T] {
	return &DuplicateGuard[T]{key: key}
}

// FindMatches returns the existing values whose key equals the candidate's
func (g *DuplicateGuard[T]) FindMatches(existing []T, candidate T) []T {
	candidateKey := g.key(candidate)
	matches := make([]T, 0)
	for _, e := range existing {
		if g.key(e) == candidateKey {
			matches = append(matches, e)
		}
	}
	return matches
}

// Check returns shared.ErrDuplicateDetected when the candidate matches
// any existing value
func (g *DuplicateGuard[T]) Check(existing []T, candidate T) error {
	if len(g.FindMatches(existing, candidate)) > 0 {
		return shared.ErrDuplicateDetected
	}
	return nil
}

// PaymentDuplicateKey is the identity a re-entered payment would share
// with the original: same account, amount and received date.
func PaymentDuplicateKey(p *Payment) string {
	return fmt.Sprintf("%s|%s|%s", p.AccountID, p.Amount.StringFixed(2), p.ReceivedDate.Format("2006-01-02"))
}

// SettingDuplicateKey treats two configuration versions with the same
// effective date as duplicates
func SettingDuplicateKey(s *InvoiceSetting) string {
	return s.EffectiveAsOf.Format("2006-01-02")
}

// ReceivableDuplicateKey is the identity a re-entered one-off charge
// would share with the original
func ReceivableDuplicateKey(r *Receivable) string {
	return fmt.Sprintf("%s|%s|%s|%s", r.AccountID, r.StatementDate.Format("2006-01-02"), r.Category, r.Amount.StringFixed(2))
}

// OverrideToken identifies a confirmed duplicate override. The first
// submission that trips the guard hands one back; presenting it again
// within its lifetime commits the duplicate.
type OverrideToken struct {
	Token     string    `json:"token"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewOverrideToken creates a token for the given duplicate key
func NewOverrideToken(key string, ttl time.Duration) OverrideToken {
	return OverrideToken{
		Token:     uuid.NewString(),
		Key:       key,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// IsExpired reports whether the token is no longer valid
func (t OverrideToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
