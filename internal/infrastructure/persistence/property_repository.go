package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/rentroll/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// PropertyModel is the GORM model for properties
type PropertyModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code          string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	StreetAddress string    `gorm:"type:varchar(255);not null"`
	CityStateZip  string    `gorm:"type:varchar(255)"`
	Version       int       `gorm:"not null;default:1"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (PropertyModel) TableName() string {
	return "properties"
}

// ToEntity converts the model to a domain entity
func (m *PropertyModel) ToEntity() *property.Property {
	return &property.Property{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Code:          m.Code,
		StreetAddress: m.StreetAddress,
		CityStateZip:  m.CityStateZip,
	}
}

// PropertyModelFromEntity creates a model from a domain entity
func PropertyModelFromEntity(e *property.Property) *PropertyModel {
	return &PropertyModel{
		ID:            e.ID,
		Code:          e.Code,
		StreetAddress: e.StreetAddress,
		CityStateZip:  e.CityStateZip,
		Version:       e.Version,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// PropertyRepository implements the property.PropertyRepository interface
type PropertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// FindByID retrieves a property by its ID
func (r *PropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	var model PropertyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindByCode retrieves a property by its short code
func (r *PropertyRepository) FindByCode(ctx context.Context, code string) (*property.Property, error) {
	var model PropertyModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindAll retrieves all properties ordered by code
func (r *PropertyRepository) FindAll(ctx context.Context) ([]property.Property, error) {
	var models []PropertyModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	properties := make([]property.Property, len(models))
	for i, model := range models {
		properties[i] = *model.ToEntity()
	}
	return properties, nil
}

// Save persists a property
func (r *PropertyRepository) Save(ctx context.Context, prop *property.Property) error {
	model := PropertyModelFromEntity(prop)
	return mapError(r.db.WithContext(ctx).Save(model).Error)
}

// Ensure PropertyRepository implements the interface
var _ property.PropertyRepository = (*PropertyRepository)(nil)
