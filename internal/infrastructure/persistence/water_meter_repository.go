package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/rentroll/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// WaterMeterModel is the GORM model for water meters
type WaterMeterModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	MeterNumber int        `gorm:"not null;uniqueIndex"`
	LotID       *uuid.UUID `gorm:"type:uuid;index"`
	Version     int        `gorm:"not null;default:1"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (WaterMeterModel) TableName() string {
	return "water_meters"
}

// ToEntity converts the model to a domain entity
func (m *WaterMeterModel) ToEntity() *property.WaterMeter {
	return &property.WaterMeter{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		MeterNumber: m.MeterNumber,
		LotID:       m.LotID,
	}
}

// WaterMeterModelFromEntity creates a model from a domain entity
func WaterMeterModelFromEntity(e *property.WaterMeter) *WaterMeterModel {
	return &WaterMeterModel{
		ID:          e.ID,
		MeterNumber: e.MeterNumber,
		LotID:       e.LotID,
		Version:     e.Version,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// WaterMeterRepository implements the property.WaterMeterRepository interface
type WaterMeterRepository struct {
	db *gorm.DB
}

// NewWaterMeterRepository creates a new water meter repository
func NewWaterMeterRepository(db *gorm.DB) *WaterMeterRepository {
	return &WaterMeterRepository{db: db}
}

// FindByID retrieves a meter by its ID
func (r *WaterMeterRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.WaterMeter, error) {
	var model WaterMeterModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindByMeterNumber retrieves a meter by its printed number
func (r *WaterMeterRepository) FindByMeterNumber(ctx context.Context, meterNumber int) (*property.WaterMeter, error) {
	var model WaterMeterModel
	if err := r.db.WithContext(ctx).First(&model, "meter_number = ?", meterNumber).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindByLotID retrieves the meter serving a lot
func (r *WaterMeterRepository) FindByLotID(ctx context.Context, lotID uuid.UUID) (*property.WaterMeter, error) {
	var model WaterMeterModel
	if err := r.db.WithContext(ctx).First(&model, "lot_id = ?", lotID).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindAll retrieves all meters ordered by meter number
func (r *WaterMeterRepository) FindAll(ctx context.Context) ([]property.WaterMeter, error) {
	var models []WaterMeterModel
	if err := r.db.WithContext(ctx).Order("meter_number ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	meters := make([]property.WaterMeter, len(models))
	for i, model := range models {
		meters[i] = *model.ToEntity()
	}
	return meters, nil
}

// Save persists a meter
func (r *WaterMeterRepository) Save(ctx context.Context, meter *property.WaterMeter) error {
	model := WaterMeterModelFromEntity(meter)
	return mapError(r.db.WithContext(ctx).Save(model).Error)
}

// Ensure WaterMeterRepository implements the interface
var _ property.WaterMeterRepository = (*WaterMeterRepository)(nil)
