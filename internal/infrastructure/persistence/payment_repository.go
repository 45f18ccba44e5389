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

// PaymentModel is the GORM model for payments
type PaymentModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AppliedAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Payer         string          `gorm:"type:varchar(200)"`
	PaymentDated  time.Time       `gorm:"not null"`
	ReceivedDate  time.Time       `gorm:"not null;index"`
	Version       int             `gorm:"not null;default:1"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (PaymentModel) TableName() string {
	return "payments"
}

// ToEntity converts the model to a domain entity
func (m *PaymentModel) ToEntity() *billing.Payment {
	return &billing.Payment{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		AccountID:     m.AccountID,
		Amount:        m.Amount,
		AppliedAmount: m.AppliedAmount,
		Payer:         m.Payer,
		PaymentDated:  m.PaymentDated,
		ReceivedDate:  m.ReceivedDate,
	}
}

// PaymentModelFromEntity creates a model from a domain entity
func PaymentModelFromEntity(e *billing.Payment) *PaymentModel {
	return &PaymentModel{
		ID:            e.ID,
		AccountID:     e.AccountID,
		Amount:        e.Amount,
		AppliedAmount: e.AppliedAmount,
		Payer:         e.Payer,
		PaymentDated:  e.PaymentDated,
		ReceivedDate:  e.ReceivedDate,
		Version:       e.Version,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// PaymentRepository implements the billing.PaymentRepository interface
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// FindByID retrieves a payment by its ID
func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindByAccount retrieves all payments for an account
func (r *PaymentRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*billing.Payment, error) {
	var models []PaymentModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("received_date ASC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return paymentsToEntities(models), nil
}

// FindAvailableByAccount retrieves an account's payments with unapplied
// money, oldest received first so the allocation run drains them FIFO
func (r *PaymentRepository) FindAvailableByAccount(ctx context.Context, accountID uuid.UUID) ([]*billing.Payment, error) {
	var models []PaymentModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where("applied_amount < amount").
		Order("received_date ASC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return paymentsToEntities(models), nil
}

// FindReceivedSince retrieves payments received on or after a date
func (r *PaymentRepository) FindReceivedSince(ctx context.Context, since time.Time) ([]*billing.Payment, error) {
	var models []PaymentModel
	err := r.db.WithContext(ctx).
		Where("received_date >= ?", since).
		Order("received_date DESC, created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return paymentsToEntities(models), nil
}

// FindByAccountReceivedOnOrBefore retrieves an account's payments up to
// a cutoff date
func (r *PaymentRepository) FindByAccountReceivedOnOrBefore(ctx context.Context, accountID uuid.UUID, asOf time.Time) ([]*billing.Payment, error) {
	var models []PaymentModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where("received_date <= ?", asOf).
		Order("received_date ASC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return paymentsToEntities(models), nil
}

// Save persists a payment
func (r *PaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	model := PaymentModelFromEntity(payment)
	return mapError(r.db.WithContext(ctx).Save(model).Error)
}

// Delete removes a payment
func (r *PaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func paymentsToEntities(models []PaymentModel) []*billing.Payment {
	payments := make([]*billing.Payment, len(models))
	for i, model := range models {
		payments[i] = model.ToEntity()
	}
	return payments
}

// Ensure PaymentRepository implements the interface
var _ billing.PaymentRepository = (*PaymentRepository)(nil)
