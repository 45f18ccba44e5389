package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the billing context
const (
	EventTypeReceivableBilled  = "billing.receivable.billed"
	EventTypePaymentRecorded   = "billing.payment.recorded"
	EventTypePaymentDeleted    = "billing.payment.deleted"
	EventTypePaymentsAllocated = "billing.payments.allocated"
)

// ReceivableBilledEvent is raised when a charge is added to an account
type ReceivableBilledEvent struct {
	shared.BaseDomainEvent
	AccountID     uuid.UUID       `json:"account_id"`
	StatementDate time.Time       `json:"statement_date"`
	Category      ChargeCategory  `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewReceivableBilledEvent creates a new receivable billed event
func NewReceivableBilledEvent(r *Receivable) *ReceivableBilledEvent {
	return &ReceivableBilledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceivableBilled, "Receivable", r.ID),
		AccountID:       r.AccountID,
		StatementDate:   r.StatementDate,
		Category:        r.Category,
		Amount:          r.Amount,
	}
}

// PaymentRecordedEvent is raised when money is received into an account
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	AccountID    uuid.UUID       `json:"account_id"`
	Amount       decimal.Decimal `json:"amount"`
	ReceivedDate time.Time       `json:"received_date"`
}

// NewPaymentRecordedEvent creates a new payment recorded event
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, "Payment", p.ID),
		AccountID:       p.AccountID,
		Amount:          p.Amount,
		ReceivedDate:    p.ReceivedDate,
	}
}

// PaymentDeletedEvent is raised when a payment is removed and its
// allocations reversed
type PaymentDeletedEvent struct {
	shared.BaseDomainEvent
	AccountID      uuid.UUID       `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"`
	ReversedAmount decimal.Decimal `json:"reversed_amount"`
}

// NewPaymentDeletedEvent creates a new payment deleted event
func NewPaymentDeletedEvent(p *Payment, reversed decimal.Decimal) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentDeleted, "Payment", p.ID),
		AccountID:       p.AccountID,
		Amount:          p.Amount,
		ReversedAmount:  reversed,
	}
}

// PaymentsAllocatedEvent is raised after an account's allocation run commits
type PaymentsAllocatedEvent struct {
	shared.BaseDomainEvent
	AccountID      uuid.UUID       `json:"account_id"`
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	Allocations    int             `json:"allocations"`
}

// NewPaymentsAllocatedEvent creates a new payments allocated event
func NewPaymentsAllocatedEvent(plan *AllocationPlan) *PaymentsAllocatedEvent {
	return &PaymentsAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentsAllocated, "Account", plan.AccountID),
		AccountID:       plan.AccountID,
		TotalAllocated:  plan.TotalAllocated,
		Allocations:     len(plan.Entries),
	}
}
