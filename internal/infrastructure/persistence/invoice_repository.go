package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/invoicing"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceModel is the GORM model for invoices. The unique index on
// (account_id, statement_date) is the database-level backstop against
// issuing the same cycle twice.
type InvoiceModel struct {
	ID            uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	AccountID     uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_account_statement"`
	StatementDate time.Time                 `gorm:"not null;uniqueIndex:idx_invoice_account_statement;index"`
	InvoiceDate   time.Time                 `gorm:"not null"`
	SettingID     uuid.UUID                 `gorm:"type:uuid;not null"`
	AmountDue     decimal.Decimal           `gorm:"type:decimal(12,2);not null"`
	DueDate       time.Time                 `gorm:"not null"`
	OverdueDate   time.Time                 `gorm:"not null"`
	Snapshot      invoicing.InvoiceSnapshot `gorm:"type:jsonb;not null"`
	DeliveredOn   *time.Time
	Version       int       `gorm:"not null;default:1"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToEntity converts the model to a domain entity
func (m *InvoiceModel) ToEntity() *invoicing.Invoice {
	return &invoicing.Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		AccountID:     m.AccountID,
		StatementDate: m.StatementDate,
		InvoiceDate:   m.InvoiceDate,
		SettingID:     m.SettingID,
		AmountDue:     m.AmountDue,
		DueDate:       m.DueDate,
		OverdueDate:   m.OverdueDate,
		Snapshot:      m.Snapshot,
		DeliveredOn:   m.DeliveredOn,
	}
}

// InvoiceModelFromEntity creates a model from a domain entity
func InvoiceModelFromEntity(e *invoicing.Invoice) *InvoiceModel {
	return &InvoiceModel{
		ID:            e.ID,
		AccountID:     e.AccountID,
		StatementDate: e.StatementDate,
		InvoiceDate:   e.InvoiceDate,
		SettingID:     e.SettingID,
		AmountDue:     e.AmountDue,
		DueDate:       e.DueDate,
		OverdueDate:   e.OverdueDate,
		Snapshot:      e.Snapshot,
		DeliveredOn:   e.DeliveredOn,
		Version:       e.Version,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// InvoiceRepository implements the invoicing.InvoiceRepository interface
type InvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// FindByID retrieves an invoice by its ID
func (r *InvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var model InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindByAccountAndStatementDate retrieves the invoice for one account
// and cycle
func (r *InvoiceRepository) FindByAccountAndStatementDate(ctx context.Context, accountID uuid.UUID, statementDate time.Time) (*invoicing.Invoice, error) {
	start, end := monthBounds(statementDate)

	var model InvoiceModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where("statement_date >= ? AND statement_date < ?", start, end).
		First(&model).Error
	if err != nil {
		return nil, mapError(err)
	}
	return model.ToEntity(), nil
}

// FindByStatementDate retrieves all invoices for a statement month
func (r *InvoiceRepository) FindByStatementDate(ctx context.Context, statementDate time.Time) ([]*invoicing.Invoice, error) {
	start, end := monthBounds(statementDate)

	var models []InvoiceModel
	err := r.db.WithContext(ctx).
		Where("statement_date >= ? AND statement_date < ?", start, end).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return invoicesToEntities(models), nil
}

// FindByAccount retrieves an account's invoices, newest cycle first
func (r *InvoiceRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*invoicing.Invoice, error) {
	var models []InvoiceModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("statement_date DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return invoicesToEntities(models), nil
}

// Save persists an invoice
func (r *InvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	model := InvoiceModelFromEntity(invoice)
	return mapError(r.db.WithContext(ctx).Save(model).Error)
}

// Delete removes an invoice
func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func invoicesToEntities(models []InvoiceModel) []*invoicing.Invoice {
	invoices := make([]*invoicing.Invoice, len(models))
	for i, model := range models {
		invoices[i] = model.ToEntity()
	}
	return invoices
}

// Ensure InvoiceRepository implements the interface
var _ invoicing.InvoiceRepository = (*InvoiceRepository)(nil)
