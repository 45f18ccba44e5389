package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllocationModel is the GORM model for payment allocations
type AllocationModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PaymentID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReceivableID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AllocatedAt  time.Time       `gorm:"not null"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (AllocationModel) TableName() string {
	return "allocations"
}

// ToEntity converts the model to a domain entity
func (m *AllocationModel) ToEntity() *billing.Allocation {
	return &billing.Allocation{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		PaymentID:    m.PaymentID,
		ReceivableID: m.ReceivableID,
		Amount:       m.Amount,
		AllocatedAt:  m.AllocatedAt,
	}
}

// AllocationModelFromEntity creates a model from a domain entity
func AllocationModelFromEntity(e *billing.Allocation) *AllocationModel {
	return &AllocationModel{
		ID:           e.ID,
		PaymentID:    e.PaymentID,
		ReceivableID: e.ReceivableID,
		Amount:       e.Amount,
		AllocatedAt:  e.AllocatedAt,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// AllocationRepository implements the billing.AllocationRepository interface
type AllocationRepository struct {
	db *gorm.DB
}

// NewAllocationRepository creates a new allocation repository
func NewAllocationRepository(db *gorm.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// FindByPayment retrieves the allocations drawn from a payment
func (r *AllocationRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]*billing.Allocation, error) {
	var models []AllocationModel
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("allocated_at ASC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return allocationsToEntities(models), nil
}

// FindByReceivable retrieves the allocations settling a receivable
func (r *AllocationRepository) FindByReceivable(ctx context.Context, receivableID uuid.UUID) ([]*billing.Allocation, error) {
	var models []AllocationModel
	err := r.db.WithContext(ctx).
		Where("receivable_id = ?", receivableID).
		Order("allocated_at ASC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return allocationsToEntities(models), nil
}

// FindByReceivables retrieves allocations for a set of receivables
func (r *AllocationRepository) FindByReceivables(ctx context.Context, receivableIDs []uuid.UUID) ([]*billing.Allocation, error) {
	if len(receivableIDs) == 0 {
		return nil, nil
	}

	var models []AllocationModel
	err := r.db.WithContext(ctx).
		Where("receivable_id IN ?", receivableIDs).
		Order("allocated_at ASC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return allocationsToEntities(models), nil
}

// Save persists an allocation
func (r *AllocationRepository) Save(ctx context.Context, allocation *billing.Allocation) error {
	model := AllocationModelFromEntity(allocation)
	return mapError(r.db.WithContext(ctx).Save(model).Error)
}

// DeleteByPayment removes all allocations drawn from a payment
func (r *AllocationRepository) DeleteByPayment(ctx context.Context, paymentID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&AllocationModel{}, "payment_id = ?", paymentID).Error
}

func allocationsToEntities(models []AllocationModel) []*billing.Allocation {
	allocations := make([]*billing.Allocation, len(models))
	for i, model := range models {
		allocations[i] = model.ToEntity()
	}
	return allocations
}

// Ensure AllocationRepository implements the interface
var _ billing.AllocationRepository = (*AllocationRepository)(nil)
