package property

import (
	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/shared"
)

// WaterMeter represents a physical water meter. A meter serves at most
// one lot at a time; the link moves when hardware is swapped.
type WaterMeter struct {
	shared.BaseAggregateRoot
	MeterNumber int
	LotID       *uuid.UUID
}

// NewWaterMeter creates a new water meter
func NewWaterMeter(meterNumber int, lotID *uuid.UUID) (*WaterMeter, error) {
	if meterNumber <= 0 {
		return nil, shared.NewDomainError("INVALID_METER_NUMBER", "Meter number must be positive")
	}

	return &WaterMeter{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MeterNumber:       meterNumber,
		LotID:             lotID,
	}, nil
}

// AssignToLot links the meter to a lot
func (m *WaterMeter) AssignToLot(lotID uuid.UUID) {
	m.LotID = &lotID
}

// Unassign detaches the meter from its lot
func (m *WaterMeter) Unassign() {
	m.LotID = nil
}

// IsAssigned reports whether the meter currently serves a lot
func (m *WaterMeter) IsAssigned() bool {
	return m.LotID != nil
}
