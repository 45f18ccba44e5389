package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/rentroll/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// TenantModel is the GORM model for tenants
type TenantModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FirstName string     `gorm:"type:varchar(100);not null"`
	LastName  string     `gorm:"type:varchar(100);not null"`
	AccountID *uuid.UUID `gorm:"type:uuid;index"`
	Version   int        `gorm:"not null;default:1"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (TenantModel) TableName() string {
	return "tenants"
}

// ToEntity converts the model to a domain entity
func (m *TenantModel) ToEntity() *property.Tenant {
	return &property.Tenant{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		FirstName: m.FirstName,
		LastName:  m.LastName,
		AccountID: m.AccountID,
	}
}

// TenantModelFromEntity creates a model from a domain entity
func TenantModelFromEntity(e *property.Tenant) *TenantModel {
	return &TenantModel{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		AccountID: e.AccountID,
		Version:   e.Version,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// TenantRepository implements the property.TenantRepository interface
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// FindByID retrieves a tenant by its ID
func (r *TenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Tenant, error) {
	var model TenantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindByAccountID retrieves the tenant holding a billing account
func (r *TenantRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*property.Tenant, error) {
	var model TenantModel
	if err := r.db.WithContext(ctx).First(&model, "account_id = ?", accountID).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindAll retrieves all tenants ordered by last name
func (r *TenantRepository) FindAll(ctx context.Context) ([]property.Tenant, error) {
	var models []TenantModel
	if err := r.db.WithContext(ctx).Order("last_name ASC, first_name ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	tenants := make([]property.Tenant, len(models))
	for i, model := range models {
		tenants[i] = *model.ToEntity()
	}
	return tenants, nil
}

// Save persists a tenant
func (r *TenantRepository) Save(ctx context.Context, tenant *property.Tenant) error {
	model := TenantModelFromEntity(tenant)
	return mapError(r.db.WithContext(ctx).Save(model).Error)
}

// Ensure TenantRepository implements the interface
var _ property.TenantRepository = (*TenantRepository)(nil)
