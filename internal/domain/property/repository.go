package property

import (
	"context"

	"github.com/google/uuid"
)

// PropertyRepository defines persistence operations for properties
type PropertyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	FindByCode(ctx context.Context, code string) (*Property, error)
	FindAll(ctx context.Context) ([]Property, error)
	Save(ctx context.Context, property *Property) error
}

// LotRepository defines persistence operations for lots
type LotRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)
	FindByCode(ctx context.Context, code string) (*Lot, error)
	FindAll(ctx context.Context) ([]Lot, error)
	Save(ctx context.Context, lot *Lot) error
}

// WaterMeterRepository defines persistence operations for water meters
type WaterMeterRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*WaterMeter, error)
	FindByMeterNumber(ctx context.Context, meterNumber int) (*WaterMeter, error)
	FindByLotID(ctx context.Context, lotID uuid.UUID) (*WaterMeter, error)
	FindAll(ctx context.Context) ([]WaterMeter, error)
	Save(ctx context.Context, meter *WaterMeter) error
}

// TenantRepository defines persistence operations for tenants
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*Tenant, error)
	FindAll(ctx context.Context) ([]Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}

// AccountRepository defines persistence operations for billing accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindActive(ctx context.Context) ([]Account, error)
	FindAll(ctx context.Context, includeClosed bool) ([]Account, error)
	Save(ctx context.Context, account *Account) error
}
