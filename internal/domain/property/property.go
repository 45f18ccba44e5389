package property

import (
	"strings"

	"github.com/rentroll/backend/internal/domain/shared"
)

// Property represents a rental property that groups lots under one address block
type Property struct {
	shared.BaseAggregateRoot
	Code          string
	StreetAddress string
	CityStateZip  string
}

// NewProperty creates a new property
func NewProperty(code, streetAddress, cityStateZip string) (*Property, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_PROPERTY_CODE", "Property code cannot be empty")
	}
	if strings.TrimSpace(streetAddress) == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Street address cannot be empty")
	}

	return &Property{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		StreetAddress:     streetAddress,
		CityStateZip:      cityStateZip,
	}, nil
}

// UpdateAddress changes the property address
func (p *Property) UpdateAddress(streetAddress, cityStateZip string) error {
	if strings.TrimSpace(streetAddress) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Street address cannot be empty")
	}
	p.StreetAddress = streetAddress
	p.CityStateZip = cityStateZip
	return nil
}
