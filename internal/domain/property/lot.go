package property

import (
	"strings"

	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Lot represents a rentable unit within a property. The code is the
// short identifier printed on invoices (e.g. "AP12").
type Lot struct {
	shared.BaseAggregateRoot
	Code            string
	PropertyCode    string
	StreetAddress   string
	CityStateZip    string
	HasStorage      bool
	StorageOverride *decimal.Decimal
}

// NewLot creates a new lot within a property
func NewLot(code, propertyCode, streetAddress, cityStateZip string) (*Lot, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_LOT_CODE", "Lot code cannot be empty")
	}
	if strings.TrimSpace(propertyCode) == "" {
		return nil, shared.NewDomainError("INVALID_PROPERTY_CODE", "Property code cannot be empty")
	}

	return &Lot{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		PropertyCode:      propertyCode,
		StreetAddress:     streetAddress,
		CityStateZip:      cityStateZip,
	}, nil
}

// EnableStorage marks the lot as having a storage unit. A nil override
// means the storage rate from the effective billing settings applies.
func (l *Lot) EnableStorage(override *decimal.Decimal) error {
	if override != nil && override.IsNegative() {
		return shared.ErrInvalidAmount
	}
	l.HasStorage = true
	l.StorageOverride = override
	return nil
}

// DisableStorage removes the storage unit from the lot
func (l *Lot) DisableStorage() {
	l.HasStorage = false
	l.StorageOverride = nil
}

// StorageFee returns the monthly storage charge for this lot given the
// configured default rate. Zero means no storage charge applies.
func (l *Lot) StorageFee(defaultRate decimal.Decimal) decimal.Decimal {
	if !l.HasStorage {
		return decimal.Zero
	}
	if l.StorageOverride != nil {
		return *l.StorageOverride
	}
	return defaultRate
}
