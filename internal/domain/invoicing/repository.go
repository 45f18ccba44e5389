package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoiceRepository defines persistence operations for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByAccountAndStatementDate returns the invoice for one account
	// and cycle, or shared.ErrNotFound
	FindByAccountAndStatementDate(ctx context.Context, accountID uuid.UUID, statementDate time.Time) (*Invoice, error)
	FindByStatementDate(ctx context.Context, statementDate time.Time) ([]*Invoice, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}
