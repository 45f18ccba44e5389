package metering

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/shared"
)

// MeterReading records the water meter counter at the end of a billing
// period. Readings are cumulative counter values, so consumption for
// the period is the delta between current and previous.
type MeterReading struct {
	shared.BaseAggregateRoot
	MeterID         uuid.UUID
	PreviousDate    time.Time
	CurrentDate     time.Time
	PreviousReading int
	CurrentReading  int
	StatementDate   time.Time
}

// NewMeterReading creates a new meter reading
func NewMeterReading(meterID uuid.UUID, previousDate, currentDate time.Time, previousReading, currentReading int, statementDate time.Time) (*MeterReading, error) {
	if meterID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_METER", "Meter ID is required")
	}
	if previousReading < 0 || currentReading < 0 {
		return nil, shared.NewDomainError("INVALID_READING", "Readings cannot be negative")
	}
	if currentReading < previousReading {
		return nil, shared.ErrNonMonotonicReading
	}
	if !currentDate.After(previousDate) {
		return nil, shared.NewDomainError("INVALID_READING_PERIOD", "Current reading date must be after the previous reading date")
	}

	return &MeterReading{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MeterID:           meterID,
		PreviousDate:      previousDate,
		CurrentDate:       currentDate,
		PreviousReading:   previousReading,
		CurrentReading:    currentReading,
		StatementDate:     statementDate,
	}, nil
}

// Usage returns the units consumed during the reading period
func (r *MeterReading) Usage() int {
	return r.CurrentReading - r.PreviousReading
}

// CoversMonth reports whether the reading belongs to the statement
// month of the given date
func (r *MeterReading) CoversMonth(statementDate time.Time) bool {
	return r.StatementDate.Year() == statementDate.Year() && r.StatementDate.Month() == statementDate.Month()
}
