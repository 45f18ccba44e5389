package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/metering"
	"github.com/rentroll/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// MeterReadingModel is the GORM model for meter readings. The unique
// index on (meter_id, statement_date) makes a repeated report import a
// no-op instead of a double bill.
type MeterReadingModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	MeterID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reading_meter_statement"`
	PreviousDate    time.Time `gorm:"not null"`
	CurrentDate     time.Time `gorm:"not null"`
	PreviousReading int       `gorm:"not null"`
	CurrentReading  int       `gorm:"not null"`
	StatementDate   time.Time `gorm:"not null;uniqueIndex:idx_reading_meter_statement;index"`
	Version         int       `gorm:"not null;default:1"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (MeterReadingModel) TableName() string {
	return "meter_readings"
}

// ToEntity converts the model to a domain entity
func (m *MeterReadingModel) ToEntity() *metering.MeterReading {
	return &metering.MeterReading{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		MeterID:         m.MeterID,
		PreviousDate:    m.PreviousDate,
		CurrentDate:     m.CurrentDate,
		PreviousReading: m.PreviousReading,
		CurrentReading:  m.CurrentReading,
		StatementDate:   m.StatementDate,
	}
}

// MeterReadingModelFromEntity creates a model from a domain entity
func MeterReadingModelFromEntity(e *metering.MeterReading) *MeterReadingModel {
	return &MeterReadingModel{
		ID:              e.ID,
		MeterID:         e.MeterID,
		PreviousDate:    e.PreviousDate,
		CurrentDate:     e.CurrentDate,
		PreviousReading: e.PreviousReading,
		CurrentReading:  e.CurrentReading,
		StatementDate:   e.StatementDate,
		Version:         e.Version,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// MeterReadingRepository implements the metering.MeterReadingRepository interface
type MeterReadingRepository struct {
	db *gorm.DB
}

// NewMeterReadingRepository creates a new meter reading repository
func NewMeterReadingRepository(db *gorm.DB) *MeterReadingRepository {
	return &MeterReadingRepository{db: db}
}

// FindByID retrieves a reading by its ID
func (r *MeterReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*metering.MeterReading, error) {
	var model MeterReadingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindByMeterAndStatementDate retrieves the reading for a meter in a
// statement month
func (r *MeterReadingRepository) FindByMeterAndStatementDate(ctx context.Context, meterID uuid.UUID, statementDate time.Time) (*metering.MeterReading, error) {
	start, end := monthBounds(statementDate)

	var model MeterReadingModel
	err := r.db.WithContext(ctx).
		Where("meter_id = ?", meterID).
		Where("statement_date >= ? AND statement_date < ?", start, end).
		First(&model).Error
	if err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindLatestByMeter retrieves the most recent reading of a meter
func (r *MeterReadingRepository) FindLatestByMeter(ctx context.Context, meterID uuid.UUID) (*metering.MeterReading, error) {
	var model MeterReadingModel
	err := r.db.WithContext(ctx).
		Where("meter_id = ?", meterID).
		Order("current_date DESC").
		First(&model).Error
	if err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindByStatementDate retrieves all readings for a statement month
func (r *MeterReadingRepository) FindByStatementDate(ctx context.Context, statementDate time.Time) ([]metering.MeterReading, error) {
	start, end := monthBounds(statementDate)

	var models []MeterReadingModel
	err := r.db.WithContext(ctx).
		Where("statement_date >= ? AND statement_date < ?", start, end).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	readings := make([]metering.MeterReading, len(models))
	for i, model := range models {
		readings[i] = *model.ToEntity()
	}
	return readings, nil
}

// Save persists a reading
func (r *MeterReadingRepository) Save(ctx context.Context, reading *metering.MeterReading) error {
	model := MeterReadingModelFromEntity(reading)
	return mapError(r.db.WithContext(ctx).Save(model).Error)
}

// monthBounds returns the half-open interval covering the statement month
func monthBounds(statementDate time.Time) (time.Time, time.Time) {
	start := time.Date(statementDate.Year(), statementDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Ensure MeterReadingRepository implements the interface
var _ metering.MeterReadingRepository = (*MeterReadingRepository)(nil)
