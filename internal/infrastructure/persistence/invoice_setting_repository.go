package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceSettingModel is the GORM model for billing configuration
// versions. One version per effective date; versions are append-only.
type InvoiceSettingModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EffectiveAsOf      time.Time       `gorm:"not null;uniqueIndex"`
	RentMonthlyRate    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	WaterMonthlyRate   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	WaterServiceFee    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	StorageMonthlyRate decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LateFeeRate        decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0"`
	GraceDays          int             `gorm:"not null"`
	DueDay             int             `gorm:"not null"`
	BusinessName       string          `gorm:"type:varchar(200)"`
	BusinessAddress    string          `gorm:"type:varchar(500)"`
	Version            int             `gorm:"not null;default:1"`
	CreatedAt          time.Time       `gorm:"autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (InvoiceSettingModel) TableName() string {
	return "invoice_settings"
}

// ToEntity converts the model to a domain entity
func (m *InvoiceSettingModel) ToEntity() *billing.InvoiceSetting {
	return &billing.InvoiceSetting{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		EffectiveAsOf:      m.EffectiveAsOf,
		RentMonthlyRate:    m.RentMonthlyRate,
		WaterMonthlyRate:   m.WaterMonthlyRate,
		WaterServiceFee:    m.WaterServiceFee,
		StorageMonthlyRate: m.StorageMonthlyRate,
		LateFeeRate:        m.LateFeeRate,
		GraceDays:          m.GraceDays,
		DueDay:             m.DueDay,
		BusinessName:       m.BusinessName,
		BusinessAddress:    m.BusinessAddress,
	}
}

// InvoiceSettingModelFromEntity creates a model from a domain entity
func InvoiceSettingModelFromEntity(e *billing.InvoiceSetting) *InvoiceSettingModel {
	return &InvoiceSettingModel{
		ID:                 e.ID,
		EffectiveAsOf:      e.EffectiveAsOf,
		RentMonthlyRate:    e.RentMonthlyRate,
		WaterMonthlyRate:   e.WaterMonthlyRate,
		WaterServiceFee:    e.WaterServiceFee,
		StorageMonthlyRate: e.StorageMonthlyRate,
		LateFeeRate:        e.LateFeeRate,
		GraceDays:          e.GraceDays,
		DueDay:             e.DueDay,
		BusinessName:       e.BusinessName,
		BusinessAddress:    e.BusinessAddress,
		Version:            e.Version,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

// InvoiceSettingRepository implements the billing.InvoiceSettingRepository interface
type InvoiceSettingRepository struct {
	db *gorm.DB
}

// NewInvoiceSettingRepository creates a new invoice setting repository
func NewInvoiceSettingRepository(db *gorm.DB) *InvoiceSettingRepository {
	return &InvoiceSettingRepository{db: db}
}

// FindByID retrieves a setting version by its ID
func (r *InvoiceSettingRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.InvoiceSetting, error) {
	var model InvoiceSettingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindAll retrieves all setting versions, newest effective date first
func (r *InvoiceSettingRepository) FindAll(ctx context.Context) ([]*billing.InvoiceSetting, error) {
	var models []InvoiceSettingModel
	if err := r.db.WithContext(ctx).Order("effective_as_of DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	settings := make([]*billing.InvoiceSetting, len(models))
	for i, model := range models {
		settings[i] = model.ToEntity()
	}
	return settings, nil
}

// FindEffective retrieves the setting version governing a statement
// date: the latest version effective at or before it
func (r *InvoiceSettingRepository) FindEffective(ctx context.Context, statementDate time.Time) (*billing.InvoiceSetting, error) {
	var model InvoiceSettingModel
	err := r.db.WithContext(ctx).
		Where("effective_as_of <= ?", statementDate).
		Order("effective_as_of DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNoApplicableConfig
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Save persists a setting version
func (r *InvoiceSettingRepository) Save(ctx context.Context, setting *billing.InvoiceSetting) error {
	model := InvoiceSettingModelFromEntity(setting)
	return mapError(r.db.WithContext(ctx).Save(model).Error)
}

// Ensure InvoiceSettingRepository implements the interface
var _ billing.InvoiceSettingRepository = (*InvoiceSettingRepository)(nil)
