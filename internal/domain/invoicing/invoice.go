package invoicing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceLine is one charge shown on an invoice
type InvoiceLine struct {
	Category    billing.ChargeCategory `json:"category"`
	Description string                 `json:"description"`
	Amount      decimal.Decimal        `json:"amount"`
}

// InvoiceSnapshot freezes everything the rendered document shows. The
// snapshot is stored with the invoice so later rate changes or
// allocation runs never alter an issued document.
type InvoiceSnapshot struct {
	BusinessName    string          `json:"business_name,omitempty"`
	BusinessAddress string          `json:"business_address,omitempty"`
	LotCode         string          `json:"lot_code"`
	LotAddress      string          `json:"lot_address,omitempty"`
	TenantName      string          `json:"tenant_name"`
	Lines           []InvoiceLine   `json:"lines"`
	CurrentCharges  decimal.Decimal `json:"current_charges"`
	PreviousBilled  decimal.Decimal `json:"previous_billed"`
	PreviousPaid    decimal.Decimal `json:"previous_paid"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	TotalDue        decimal.Decimal `json:"total_due"`
	DueDate         time.Time       `json:"due_date"`
	OverdueDate     time.Time       `json:"overdue_date"`
	Notes           []string        `json:"notes,omitempty"`
}

// HasCategory reports whether any line carries the given charge category
func (s InvoiceSnapshot) HasCategory(category billing.ChargeCategory) bool {
	for _, line := range s.Lines {
		if line.Category == category {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer for JSONB storage
func (s InvoiceSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB retrieval
func (s *InvoiceSnapshot) Scan(value any) error {
	if value == nil {
		*s = InvoiceSnapshot{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into InvoiceSnapshot", value)
	}
	return json.Unmarshal(data, s)
}

// Invoice is the issued statement document for one account and cycle.
// At most one invoice exists per account and statement date.
type Invoice struct {
	shared.BaseAggregateRoot
	AccountID     uuid.UUID
	StatementDate time.Time
	InvoiceDate   time.Time
	SettingID     uuid.UUID
	AmountDue     decimal.Decimal
	DueDate       time.Time
	OverdueDate   time.Time
	Snapshot      InvoiceSnapshot
	DeliveredOn   *time.Time
}

// NewInvoice creates a new invoice from a frozen snapshot
func NewInvoice(accountID, settingID uuid.UUID, statementDate, invoiceDate time.Time, snapshot InvoiceSnapshot) (*Invoice, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID is required")
	}
	if settingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SETTING", "Setting ID is required")
	}
	if snapshot.TotalDue.IsNegative() {
		return nil, shared.ErrInvalidAmount
	}

	invoice := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AccountID:         accountID,
		StatementDate:     statementDate,
		InvoiceDate:       invoiceDate,
		SettingID:         settingID,
		AmountDue:         snapshot.TotalDue,
		DueDate:           snapshot.DueDate,
		OverdueDate:       snapshot.OverdueDate,
		Snapshot:          snapshot,
	}
	invoice.AddDomainEvent(NewInvoiceIssuedEvent(invoice))
	return invoice, nil
}

// MarkDelivered records when the invoice went out to the tenant
func (i *Invoice) MarkDelivered(on time.Time) error {
	if i.DeliveredOn != nil {
		return shared.ErrInvalidState
	}
	i.DeliveredOn = &on
	return nil
}

// IsDelivered reports whether the invoice has been sent
func (i *Invoice) IsDelivered() bool {
	return i.DeliveredOn != nil
}
