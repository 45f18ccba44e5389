package metering

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MeterReadingRepository defines persistence operations for meter readings
type MeterReadingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MeterReading, error)
	// FindByMeterAndStatementDate returns the reading for a meter in a
	// given statement month, or shared.ErrNotFound
	FindByMeterAndStatementDate(ctx context.Context, meterID uuid.UUID, statementDate time.Time) (*MeterReading, error)
	// FindLatestByMeter returns the most recent reading for a meter by
	// current reading date, or shared.ErrNotFound when none exist
	FindLatestByMeter(ctx context.Context, meterID uuid.UUID) (*MeterReading, error)
	FindByStatementDate(ctx context.Context, statementDate time.Time) ([]MeterReading, error)
	Save(ctx context.Context, reading *MeterReading) error
}
