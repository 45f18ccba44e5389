package metering

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/metering"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/rentroll/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ImportRow is one line of a meter report to be imported
type ImportRow struct {
	Line            int       `json:"line"`
	MeterNumber     int       `json:"meter_number"`
	PreviousDate    time.Time `json:"previous_date"`
	CurrentDate     time.Time `json:"current_date"`
	PreviousReading int       `json:"previous_reading"`
	CurrentReading  int       `json:"current_reading"`
}

// RowResult reports the outcome of importing one row. A row either
// produces a reading or carries an error; failures never abort the rest
// of the batch.
type RowResult struct {
	Line        int        `json:"line"`
	MeterNumber int        `json:"meter_number"`
	ReadingID   *uuid.UUID `json:"reading_id,omitempty"`
	Usage       int        `json:"usage"`
	Warning     string     `json:"warning,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// ImportReport summarizes a meter report import
type ImportReport struct {
	StatementDate time.Time   `json:"statement_date"`
	Rows          []RowResult `json:"rows"`
	Imported      int         `json:"imported"`
	Skipped       int         `json:"skipped"`
	Failed        int         `json:"failed"`
}

// ImportService brings meter report rows into the reading ledger
type ImportService struct {
	meterRepo   property.WaterMeterRepository
	readingRepo metering.MeterReadingRepository
	logger      *zap.Logger
}

// NewImportService creates a new ImportService
func NewImportService(meterRepo property.WaterMeterRepository, readingRepo metering.MeterReadingRepository, logger *zap.Logger) *ImportService {
	return &ImportService{
		meterRepo:   meterRepo,
		readingRepo: readingRepo,
		logger:      logger,
	}
}

// Import validates and stores a batch of meter readings for one
// statement month. Each row succeeds or fails on its own; a row whose
// meter already has a reading for the month counts as skipped, not
// failed, so re-running an import is harmless.
func (s *ImportService) Import(ctx context.Context, statementDate time.Time, rows []ImportRow) (*ImportReport, error) {
	report := &ImportReport{
		StatementDate: statementDate,
		Rows:          make([]RowResult, 0, len(rows)),
	}

	for _, row := range rows {
		result := s.importRow(ctx, statementDate, row)
		switch {
		case result.Error == shared.ErrAlreadyExists.Code:
			result.Error = ""
			report.Skipped++
		case result.Error != "":
			report.Failed++
		default:
			report.Imported++
		}
		report.Rows = append(report.Rows, result)
	}

	s.logger.Info("Meter report imported",
		zap.Time("statement_date", statementDate),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

// Record stores a single manually entered reading
func (s *ImportService) Record(ctx context.Context, statementDate time.Time, row ImportRow) (*metering.MeterReading, error) {
	result := s.importRow(ctx, statementDate, row)
	if result.Error != "" {
		return nil, shared.NewDomainError(result.Error, "Reading rejected: "+result.Error)
	}
	return s.readingRepo.FindByID(ctx, *result.ReadingID)
}

// ListByStatementDate returns the readings recorded for a cycle
func (s *ImportService) ListByStatementDate(ctx context.Context, statementDate time.Time) ([]metering.MeterReading, error) {
	return s.readingRepo.FindByStatementDate(ctx, statementDate)
}

// LatestForMeter returns the most recent reading of a meter
func (s *ImportService) LatestForMeter(ctx context.Context, meterID uuid.UUID) (*metering.MeterReading, error) {
	return s.readingRepo.FindLatestByMeter(ctx, meterID)
}

func (s *ImportService) importRow(ctx context.Context, statementDate time.Time, row ImportRow) RowResult {
	result := RowResult{Line: row.Line, MeterNumber: row.MeterNumber}

	meter, err := s.meterRepo.FindByMeterNumber(ctx, row.MeterNumber)
	if err != nil {
		result.Error = "UNKNOWN_METER"
		return result
	}

	if _, err := s.readingRepo.FindByMeterAndStatementDate(ctx, meter.ID, statementDate); err == nil {
		result.Error = shared.ErrAlreadyExists.Code
		return result
	} else if !errors.Is(err, shared.ErrNotFound) {
		result.Error = err.Error()
		return result
	}

	latest, err := s.readingRepo.FindLatestByMeter(ctx, meter.ID)
	switch {
	case err == nil:
		if row.CurrentReading < latest.CurrentReading {
			result.Error = shared.ErrNonMonotonicReading.Code
			return result
		}
		if row.PreviousReading != latest.CurrentReading {
			result.Warning = "previous reading does not match the last recorded reading"
		}
	case !errors.Is(err, shared.ErrNotFound):
		result.Error = err.Error()
		return result
	}

	reading, err := metering.NewMeterReading(meter.ID, row.PreviousDate, row.CurrentDate, row.PreviousReading, row.CurrentReading, statementDate)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			result.Error = domainErr.Code
		} else {
			result.Error = err.Error()
		}
		return result
	}

	if err := s.readingRepo.Save(ctx, reading); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			result.Error = shared.ErrAlreadyExists.Code
		} else {
			result.Error = err.Error()
		}
		return result
	}

	result.ReadingID = &reading.ID
	result.Usage = reading.Usage()
	return result
}
