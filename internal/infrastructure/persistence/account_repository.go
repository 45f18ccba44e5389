package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountModel is the GORM model for billing accounts
type AccountModel struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey"`
	LotID              *uuid.UUID       `gorm:"type:uuid;index"`
	HolderID           *uuid.UUID       `gorm:"type:uuid"`
	BillPreference     string           `gorm:"type:varchar(20);not null;default:'NO_PREFERENCE'"`
	RentalRateOverride *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ClosedAt           *time.Time       `gorm:"index"`
	Version            int              `gorm:"not null;default:1"`
	CreatedAt          time.Time        `gorm:"autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (AccountModel) TableName() string {
	return "accounts"
}

// ToEntity converts the model to a domain entity
func (m *AccountModel) ToEntity() *property.Account {
	return &property.Account{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		LotID:              m.LotID,
		HolderID:           m.HolderID,
		BillPreference:     property.BillPreference(m.BillPreference),
		RentalRateOverride: m.RentalRateOverride,
		ClosedAt:           m.ClosedAt,
	}
}

// AccountModelFromEntity creates a model from a domain entity
func AccountModelFromEntity(e *property.Account) *AccountModel {
	return &AccountModel{
		ID:                 e.ID,
		LotID:              e.LotID,
		HolderID:           e.HolderID,
		BillPreference:     string(e.BillPreference),
		RentalRateOverride: e.RentalRateOverride,
		ClosedAt:           e.ClosedAt,
		Version:            e.Version,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

// AccountRepository implements the property.AccountRepository interface
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByID retrieves an account by its ID
func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Account, error) {
	var model AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindActive retrieves accounts that participate in billing runs: open
// and linked to a lot
func (r *AccountRepository) FindActive(ctx context.Context) ([]property.Account, error) {
	var models []AccountModel
	err := r.db.WithContext(ctx).
		Where("closed_at IS NULL").
		Where("lot_id IS NOT NULL").
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	accounts := make([]property.Account, len(models))
	for i, model := range models {
		accounts[i] = *model.ToEntity()
	}
	return accounts, nil
}

// FindAll retrieves accounts, optionally including closed ones
func (r *AccountRepository) FindAll(ctx context.Context, includeClosed bool) ([]property.Account, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if !includeClosed {
		query = query.Where("closed_at IS NULL")
	}

	var models []AccountModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	accounts := make([]property.Account, len(models))
	for i, model := range models {
		accounts[i] = *model.ToEntity()
	}
	return accounts, nil
}

// Save persists an account
func (r *AccountRepository) Save(ctx context.Context, account *property.Account) error {
	model := AccountModelFromEntity(account)
	return mapError(r.db.WithContext(ctx).Save(model).Error)
}

// Ensure AccountRepository implements the interface
var _ property.AccountRepository = (*AccountRepository)(nil)
