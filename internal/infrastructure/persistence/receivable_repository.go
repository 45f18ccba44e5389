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

// ReceivableModel is the GORM model for receivable charges. Recurring
// categories are additionally guarded by a partial unique index on
// (account_id, statement_date, category), created in the migrations;
// one-off OTHER charges may repeat.
type ReceivableModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AccountID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	StatementDate   time.Time       `gorm:"not null;index"`
	Category        string          `gorm:"type:varchar(20);not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Description     string          `gorm:"type:varchar(255)"`
	Version         int             `gorm:"not null;default:1"`
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (ReceivableModel) TableName() string {
	return "receivables"
}

// ToEntity converts the model to a domain entity
func (m *ReceivableModel) ToEntity() *billing.Receivable {
	return &billing.Receivable{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		AccountID:       m.AccountID,
		StatementDate:   m.StatementDate,
		Category:        billing.ChargeCategory(m.Category),
		Amount:          m.Amount,
		AllocatedAmount: m.AllocatedAmount,
		Description:     m.Description,
	}
}

// ReceivableModelFromEntity creates a model from a domain entity
func ReceivableModelFromEntity(e *billing.Receivable) *ReceivableModel {
	return &ReceivableModel{
		ID:              e.ID,
		AccountID:       e.AccountID,
		StatementDate:   e.StatementDate,
		Category:        string(e.Category),
		Amount:          e.Amount,
		AllocatedAmount: e.AllocatedAmount,
		Description:     e.Description,
		Version:         e.Version,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// ReceivableRepository implements the billing.ReceivableRepository interface
type ReceivableRepository struct {
	db *gorm.DB
}

// NewReceivableRepository creates a new receivable repository
func NewReceivableRepository(db *gorm.DB) *ReceivableRepository {
	return &ReceivableRepository{db: db}
}

// FindByID retrieves a receivable by its ID
func (r *ReceivableRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Receivable, error) {
	var model ReceivableModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindByAccount retrieves all receivables for an account
func (r *ReceivableRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*billing.Receivable, error) {
	var models []ReceivableModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("statement_date ASC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return receivablesToEntities(models), nil
}

// FindOpenByAccount retrieves an account's receivables with money still owed
func (r *ReceivableRepository) FindOpenByAccount(ctx context.Context, accountID uuid.UUID) ([]*billing.Receivable, error) {
	var models []ReceivableModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where("allocated_amount < amount").
		Order("statement_date ASC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return receivablesToEntities(models), nil
}

// FindOpen retrieves every receivable with money still owed
func (r *ReceivableRepository) FindOpen(ctx context.Context) ([]*billing.Receivable, error) {
	var models []ReceivableModel
	err := r.db.WithContext(ctx).
		Where("allocated_amount < amount").
		Order("statement_date ASC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return receivablesToEntities(models), nil
}

// FindByAccountStatementCategory retrieves the one recurring charge for
// an account, cycle and category
func (r *ReceivableRepository) FindByAccountStatementCategory(ctx context.Context, accountID uuid.UUID, statementDate time.Time, category billing.ChargeCategory) (*billing.Receivable, error) {
	start, end := monthBounds(statementDate)

	var model ReceivableModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where("statement_date >= ? AND statement_date < ?", start, end).
		Where("category = ?", string(category)).
		First(&model).Error
	if err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindByAccountAndStatementDate retrieves an account's charges for one cycle
func (r *ReceivableRepository) FindByAccountAndStatementDate(ctx context.Context, accountID uuid.UUID, statementDate time.Time) ([]*billing.Receivable, error) {
	start, end := monthBounds(statementDate)

	var models []ReceivableModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where("statement_date >= ? AND statement_date < ?", start, end).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return receivablesToEntities(models), nil
}

// FindByCategory retrieves all receivables of one category
func (r *ReceivableRepository) FindByCategory(ctx context.Context, category billing.ChargeCategory) ([]*billing.Receivable, error) {
	var models []ReceivableModel
	err := r.db.WithContext(ctx).
		Where("category = ?", string(category)).
		Order("statement_date ASC, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return receivablesToEntities(models), nil
}

// Save persists a receivable
func (r *ReceivableRepository) Save(ctx context.Context, receivable *billing.Receivable) error {
	model := ReceivableModelFromEntity(receivable)
	return mapError(r.db.WithContext(ctx).Save(model).Error)
}

func receivablesToEntities(models []ReceivableModel) []*billing.Receivable {
	receivables := make([]*billing.Receivable, len(models))
	for i, model := range models {
		receivables[i] = model.ToEntity()
	}
	return receivables
}

// Ensure ReceivableRepository implements the interface
var _ billing.ReceivableRepository = (*ReceivableRepository)(nil)
