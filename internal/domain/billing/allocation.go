package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Allocation ties part of a payment to a receivable. The rows are the
// audit trail of how pooled money settled individual charges.
type Allocation struct {
	shared.BaseEntity
	PaymentID    uuid.UUID
	ReceivableID uuid.UUID
	Amount       decimal.Decimal
	AllocatedAt  time.Time
}

// NewAllocation creates a new allocation record
func NewAllocation(paymentID, receivableID uuid.UUID, amount decimal.Decimal, allocatedAt time.Time) (*Allocation, error) {
	if paymentID == uuid.Nil || receivableID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ALLOCATION", "Payment and receivable IDs are required")
	}
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}

	return &Allocation{
		BaseEntity:   shared.NewBaseEntity(),
		PaymentID:    paymentID,
		ReceivableID: receivableID,
		Amount:       amount,
		AllocatedAt:  allocatedAt,
	}, nil
}
