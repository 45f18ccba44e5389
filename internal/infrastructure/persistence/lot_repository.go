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

// LotModel is the GORM model for lots
type LotModel struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Code            string           `gorm:"type:varchar(20);not null;uniqueIndex"`
	PropertyCode    string           `gorm:"type:varchar(20);not null;index"`
	StreetAddress   string           `gorm:"type:varchar(255)"`
	CityStateZip    string           `gorm:"type:varchar(255)"`
	HasStorage      bool             `gorm:"not null;default:false"`
	StorageOverride *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Version         int              `gorm:"not null;default:1"`
	CreatedAt       time.Time        `gorm:"autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (LotModel) TableName() string {
	return "lots"
}

// ToEntity converts the model to a domain entity
func (m *LotModel) ToEntity() *property.Lot {
	return &property.Lot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Code:            m.Code,
		PropertyCode:    m.PropertyCode,
		StreetAddress:   m.StreetAddress,
		CityStateZip:    m.CityStateZip,
		HasStorage:      m.HasStorage,
		StorageOverride: m.StorageOverride,
	}
}

// LotModelFromEntity creates a model from a domain entity
func LotModelFromEntity(e *property.Lot) *LotModel {
	return &LotModel{
		ID:              e.ID,
		Code:            e.Code,
		PropertyCode:    e.PropertyCode,
		StreetAddress:   e.StreetAddress,
		CityStateZip:    e.CityStateZip,
		HasStorage:      e.HasStorage,
		StorageOverride: e.StorageOverride,
		Version:         e.Version,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// LotRepository implements the property.LotRepository interface
type LotRepository struct {
	db *gorm.DB
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *gorm.DB) *LotRepository {
	return &LotRepository{db: db}
}

// FindByID retrieves a lot by its ID
func (r *LotRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Lot, error) {
	var model LotModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindByCode retrieves a lot by its short code
func (r *LotRepository) FindByCode(ctx context.Context, code string) (*property.Lot, error) {
	var model LotModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindAll retrieves all lots ordered by code
func (r *LotRepository) FindAll(ctx context.Context) ([]property.Lot, error) {
	var models []LotModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	lots := make([]property.Lot, len(models))
	for i, model := range models {
		lots[i] = *model.ToEntity()
	}
	return lots, nil
}

// Save persists a lot
func (r *LotRepository) Save(ctx context.Context, lot *property.Lot) error {
	model := LotModelFromEntity(lot)
	return mapError(r.db.WithContext(ctx).Save(model).Error)
}

// Ensure LotRepository implements the interface
var _ property.LotRepository = (*LotRepository)(nil)
