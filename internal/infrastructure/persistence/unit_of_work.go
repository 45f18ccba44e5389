package persistence

import (
	"context"

	"github.com/rentroll/backend/internal/domain/billing"
	"gorm.io/gorm"
)

// GormUnitOfWork implements billing.UnitOfWork on top of a GORM
// transaction. The allocation run writes payments, receivables and
// allocation rows together; any error rolls the whole batch back.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new unit of work
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn inside one transaction with tx-scoped repositories
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(repos billing.UnitOfWorkRepos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepos{tx: tx})
	})
}

type txRepos struct {
	tx *gorm.DB
}

func (r *txRepos) Receivables() billing.ReceivableRepository {
	return NewReceivableRepository(r.tx)
}

func (r *txRepos) Payments() billing.PaymentRepository {
	return NewPaymentRepository(r.tx)
}

func (r *txRepos) Allocations() billing.AllocationRepository {
	return NewAllocationRepository(r.tx)
}

// Ensure GormUnitOfWork implements the interface
var _ billing.UnitOfWork = (*GormUnitOfWork)(nil)
