package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Receivable is a single charge against an account for a statement
// date. It tracks how much of the charge payments have covered so far.
type Receivable struct {
	shared.BaseAggregateRoot
	AccountID       uuid.UUID
	StatementDate   time.Time
	Category        ChargeCategory
	Amount          decimal.Decimal
	AllocatedAmount decimal.Decimal
	Description     string
}

// NewReceivable creates a new receivable charge
func NewReceivable(accountID uuid.UUID, statementDate time.Time, category ChargeCategory, amount decimal.Decimal, description string) (*Receivable, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID is required")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown charge category: "+string(category))
	}
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}

	receivable := &Receivable{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AccountID:         accountID,
		StatementDate:     statementDate,
		Category:          category,
		Amount:            amount,
		AllocatedAmount:   decimal.Zero,
		Description:       description,
	}
	receivable.AddDomainEvent(NewReceivableBilledEvent(receivable))
	return receivable, nil
}

// Outstanding returns the unpaid portion of the charge
func (r *Receivable) Outstanding() decimal.Decimal {
	return r.Amount.Sub(r.AllocatedAmount)
}

// IsPaid reports whether allocations fully cover the charge
func (r *Receivable) IsPaid() bool {
	return r.AllocatedAmount.GreaterThanOrEqual(r.Amount)
}

// ApplyAllocation records that part of a payment covers this charge
func (r *Receivable) ApplyAllocation(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	if amount.GreaterThan(r.Outstanding()) {
		return shared.NewDomainError("OVER_ALLOCATION", "Allocation exceeds the outstanding amount")
	}
	r.AllocatedAmount = r.AllocatedAmount.Add(amount)
	return nil
}

// ReverseAllocation backs out a previously applied allocation, e.g.
// when the payment that funded it is deleted
func (r *Receivable) ReverseAllocation(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	if amount.GreaterThan(r.AllocatedAmount) {
		return shared.NewDomainError("OVER_REVERSAL", "Reversal exceeds the allocated amount")
	}
	r.AllocatedAmount = r.AllocatedAmount.Sub(amount)
	return nil
}
