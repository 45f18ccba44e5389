package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Payment is money received into an account's pool. Payments are not
// earmarked on receipt; the allocation run draws them against open
// receivables and tracks how much has been applied.
type Payment struct {
	shared.BaseAggregateRoot
	AccountID     uuid.UUID
	Amount        decimal.Decimal
	AppliedAmount decimal.Decimal
	Payer         string
	PaymentDated  time.Time
	ReceivedDate  time.Time
}

// NewPayment creates a new payment
func NewPayment(accountID uuid.UUID, amount decimal.Decimal, payer string, paymentDated, receivedDate time.Time) (*Payment, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID is required")
	}
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}

	payment := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AccountID:         accountID,
		Amount:            amount,
		AppliedAmount:     decimal.Zero,
		Payer:             strings.TrimSpace(payer),
		PaymentDated:      paymentDated,
		ReceivedDate:      receivedDate,
	}
	payment.AddDomainEvent(NewPaymentRecordedEvent(payment))
	return payment, nil
}

// Available returns the portion of the payment not yet applied to a charge
func (p *Payment) Available() decimal.Decimal {
	return p.Amount.Sub(p.AppliedAmount)
}

// IsFullyApplied reports whether the whole payment has been allocated
func (p *Payment) IsFullyApplied() bool {
	return p.AppliedAmount.GreaterThanOrEqual(p.Amount)
}

// Apply marks part of the payment as allocated to a charge
func (p *Payment) Apply(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	if amount.GreaterThan(p.Available()) {
		return shared.NewDomainError("OVER_APPLICATION", "Application exceeds the payment's available amount")
	}
	p.AppliedAmount = p.AppliedAmount.Add(amount)
	return nil
}

// Unapply releases a previously applied portion of the payment
func (p *Payment) Unapply(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	if amount.GreaterThan(p.AppliedAmount) {
		return shared.NewDomainError("OVER_RELEASE", "Release exceeds the applied amount")
	}
	p.AppliedAmount = p.AppliedAmount.Sub(amount)
	return nil
}
