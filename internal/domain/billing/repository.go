package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReceivableRepository defines persistence operations for receivables
type ReceivableRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Receivable, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*Receivable, error)
	FindOpenByAccount(ctx context.Context, accountID uuid.UUID) ([]*Receivable, error)
	FindOpen(ctx context.Context) ([]*Receivable, error)
	// FindByAccountStatementCategory looks up the one recurring charge
	// for a cycle, or shared.ErrNotFound
	FindByAccountStatementCategory(ctx context.Context, accountID uuid.UUID, statementDate time.Time, category ChargeCategory) (*Receivable, error)
	FindByAccountAndStatementDate(ctx context.Context, accountID uuid.UUID, statementDate time.Time) ([]*Receivable, error)
	FindByCategory(ctx context.Context, category ChargeCategory) ([]*Receivable, error)
	Save(ctx context.Context, receivable *Receivable) error
}

// PaymentRepository defines persistence operations for payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*Payment, error)
	// FindAvailableByAccount returns payments with unapplied money,
	// oldest received first
	FindAvailableByAccount(ctx context.Context, accountID uuid.UUID) ([]*Payment, error)
	FindReceivedSince(ctx context.Context, since time.Time) ([]*Payment, error)
	// FindByAccountReceivedOnOrBefore supports balance-as-of queries
	FindByAccountReceivedOnOrBefore(ctx context.Context, accountID uuid.UUID, asOf time.Time) ([]*Payment, error)
	Save(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AllocationRepository defines persistence operations for allocations
type AllocationRepository interface {
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]*Allocation, error)
	FindByReceivable(ctx context.Context, receivableID uuid.UUID) ([]*Allocation, error)
	FindByReceivables(ctx context.Context, receivableIDs []uuid.UUID) ([]*Allocation, error)
	Save(ctx context.Context, allocation *Allocation) error
	DeleteByPayment(ctx context.Context, paymentID uuid.UUID) error
}

// InvoiceSettingRepository defines persistence operations for billing
// configuration versions
type InvoiceSettingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InvoiceSetting, error)
	FindAll(ctx context.Context) ([]*InvoiceSetting, error)
	// FindEffective returns the version governing the given date, or
	// shared.ErrNoApplicableConfig
	FindEffective(ctx context.Context, statementDate time.Time) (*InvoiceSetting, error)
	Save(ctx context.Context, setting *InvoiceSetting) error
}

// UnitOfWork runs billing repository operations inside one database
// transaction. The repositories handed to fn are transaction scoped;
// an error from fn rolls everything back.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(repos UnitOfWorkRepos) error) error
}

// UnitOfWorkRepos exposes the transaction-scoped repositories
type UnitOfWorkRepos interface {
	Receivables() ReceivableRepository
	Payments() PaymentRepository
	Allocations() AllocationRepository
}
