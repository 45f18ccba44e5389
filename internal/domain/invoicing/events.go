package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the invoicing context
const (
	EventTypeInvoiceIssued = "invoicing.invoice.issued"
)

// InvoiceIssuedEvent is raised when an invoice is created for an account
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	AccountID     uuid.UUID       `json:"account_id"`
	StatementDate time.Time       `json:"statement_date"`
	AmountDue     decimal.Decimal `json:"amount_due"`
}

// NewInvoiceIssuedEvent creates a new invoice issued event
func NewInvoiceIssuedEvent(invoice *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, "Invoice", invoice.ID),
		AccountID:       invoice.AccountID,
		StatementDate:   invoice.StatementDate,
		AmountDue:       invoice.AmountDue,
	}
}
