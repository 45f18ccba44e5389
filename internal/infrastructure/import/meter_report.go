package csvimport

import (
	"io"
	"strconv"
	"time"

	"github.com/rentroll/backend/internal/application/metering"
	"github.com/shopspring/decimal"
)

// Meter report column names. The utility's export uses these headers;
// extra columns are ignored.
const (
	ColumnMeterNumber     = "meter_number"
	ColumnPreviousDate    = "previous_date"
	ColumnCurrentDate     = "current_date"
	ColumnPreviousReading = "previous_reading"
	ColumnCurrentReading  = "current_reading"
)

// meterReportDateFormats are the date layouts accepted in report files.
// The utility exports ISO dates; hand-edited files tend to use US slashes.
var meterReportDateFormats = []string{"2006-01-02", "1/2/2006"}

// MeterReportResult is the outcome of parsing one report file. Rows
// that fail file-level validation are reported here and never reach the
// import service; rows that parse are handed on even if the service
// later rejects them against stored readings.
type MeterReportResult struct {
	Rows      []metering.ImportRow `json:"-"`
	TotalRows int                  `json:"total_rows"`
	Errors    []RowError           `json:"errors,omitempty"`
}

// meterReportRules describes the report columns for field validation
func meterReportRules() []FieldRule {
	zero := decimal.Zero
	return []FieldRule{
		// Dates validate through the custom func so both supported
		// layouts pass; the Date type would pin a single layout.
		Field(ColumnMeterNumber).Int().Required().Unique().Build(),
		Field(ColumnPreviousDate).Custom(validateReportDate).Build(),
		Field(ColumnCurrentDate).Custom(validateReportDate).Build(),
		Field(ColumnPreviousReading).Int().Required().MinValue(zero).Build(),
		Field(ColumnCurrentReading).Int().Required().MinValue(zero).Build(),
	}
}

// validateReportDate accepts any of the supported report date layouts
func validateReportDate(value string) error {
	_, err := parseReportDate(value)
	return err
}

func parseReportDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range meterReportDateFormats {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParseMeterReport reads a utility meter report CSV into import rows.
// File-level problems (bad encoding, missing headers) fail the whole
// parse; per-row problems are collected so one bad line never sinks the
// report.
func ParseMeterReport(r io.Reader, maxErrors int) (*MeterReportResult, error) {
	parser, err := NewCSVParser(r)
	if err != nil {
		return nil, err
	}

	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}

	required := []string{ColumnMeterNumber, ColumnPreviousReading, ColumnCurrentReading}
	if missing := parser.ValidateHeaders(required); len(missing) > 0 {
		return nil, ErrMissingHeader
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}

	validator := NewFieldValidator(meterReportRules(), maxErrors)
	result := &MeterReportResult{TotalRows: len(rows)}

	for _, row := range rows {
		if !validator.ValidateRow(row) {
			continue
		}
		result.Rows = append(result.Rows, toImportRow(row))
	}

	result.Errors = validator.Errors().Errors()
	return result, nil
}

// toImportRow converts a validated CSV row. The row has already passed
// type validation, so conversions cannot fail here; dates are optional
// and left zero when the column is absent.
func toImportRow(row *Row) metering.ImportRow {
	meterNumber, _ := strconv.Atoi(row.Get(ColumnMeterNumber))
	previousReading, _ := strconv.Atoi(row.Get(ColumnPreviousReading))
	currentReading, _ := strconv.Atoi(row.Get(ColumnCurrentReading))

	imported := metering.ImportRow{
		Line:            row.LineNumber,
		MeterNumber:     meterNumber,
		PreviousReading: previousReading,
		CurrentReading:  currentReading,
	}
	if v := row.Get(ColumnPreviousDate); v != "" {
		imported.PreviousDate, _ = parseReportDate(v)
	}
	if v := row.Get(ColumnCurrentDate); v != "" {
		imported.CurrentDate, _ = parseReportDate(v)
	}
	return imported
}
