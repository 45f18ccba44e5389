package billing

import (
	"sort"
	"time"

	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceSetting is one effective-dated version of the billing
// configuration. Versions are append-only; a setting that billing runs
// have referenced is never edited, a new version supersedes it.
type InvoiceSetting struct {
	shared.BaseAggregateRoot
	EffectiveAsOf      time.Time
	RentMonthlyRate    decimal.Decimal
	WaterMonthlyRate   decimal.Decimal
	WaterServiceFee    decimal.Decimal
	StorageMonthlyRate decimal.Decimal
	LateFeeRate        decimal.Decimal
	GraceDays          int
	DueDay             int
	BusinessName       string
	BusinessAddress    string
}

const (
	defaultGraceDays = 10
	defaultDueDay    = 1
)

// NewInvoiceSetting creates a new billing configuration version
func NewInvoiceSetting(effectiveAsOf time.Time, rentRate, waterRate, waterServiceFee, storageRate, lateFeeRate decimal.Decimal, graceDays, dueDay int) (*InvoiceSetting, error) {
	if effectiveAsOf.IsZero() {
		return nil, shared.NewDomainError("INVALID_EFFECTIVE_DATE", "Effective date is required")
	}
	if rentRate.IsNegative() || waterRate.IsNegative() || waterServiceFee.IsNegative() || storageRate.IsNegative() || lateFeeRate.IsNegative() {
		return nil, shared.ErrInvalidAmount
	}
	if graceDays == 0 {
		graceDays = defaultGraceDays
	}
	if dueDay == 0 {
		dueDay = defaultDueDay
	}
	if graceDays < 0 {
		return nil, shared.NewDomainError("INVALID_GRACE_DAYS", "Grace days cannot be negative")
	}
	if dueDay < 1 || dueDay > 28 {
		return nil, shared.NewDomainError("INVALID_DUE_DAY", "Due day must be between 1 and 28")
	}

	return &InvoiceSetting{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		EffectiveAsOf:      effectiveAsOf,
		RentMonthlyRate:    rentRate,
		WaterMonthlyRate:   waterRate,
		WaterServiceFee:    waterServiceFee,
		StorageMonthlyRate: storageRate,
		LateFeeRate:        lateFeeRate,
		GraceDays:          graceDays,
		DueDay:             dueDay,
	}, nil
}

// DueDate returns the day payment is due for a statement date
func (s *InvoiceSetting) DueDate(statementDate time.Time) time.Time {
	return time.Date(statementDate.Year(), statementDate.Month(), s.DueDay, 0, 0, 0, 0, statementDate.Location())
}

// OverdueDate returns the first day charges for a statement date count
// as overdue: the due date plus the grace period
func (s *InvoiceSetting) OverdueDate(statementDate time.Time) time.Time {
	return s.DueDate(statementDate).AddDate(0, 0, s.GraceDays)
}

// RaiseRates returns a NEW setting version with the recurring rates
// increased by the given percentage, effective from the given date.
// The receiver is not modified.
func (s *InvoiceSetting) RaiseRates(percent decimal.Decimal, effectiveAsOf time.Time) (*InvoiceSetting, error) {
	if percent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PERCENT", "Raise percentage cannot be negative")
	}
	if !effectiveAsOf.After(s.EffectiveAsOf) {
		return nil, shared.NewDomainError("INVALID_EFFECTIVE_DATE", "New version must take effect after the current one")
	}

	factor := decimal.NewFromInt(1).Add(percent.Div(decimal.NewFromInt(100)))
	next := &InvoiceSetting{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		EffectiveAsOf:      effectiveAsOf,
		RentMonthlyRate:    s.RentMonthlyRate.Mul(factor).Round(2),
		WaterMonthlyRate:   s.WaterMonthlyRate.Mul(factor).Round(2),
		WaterServiceFee:    s.WaterServiceFee,
		StorageMonthlyRate: s.StorageMonthlyRate.Mul(factor).Round(2),
		LateFeeRate:        s.LateFeeRate,
		GraceDays:          s.GraceDays,
		DueDay:             s.DueDay,
		BusinessName:       s.BusinessName,
		BusinessAddress:    s.BusinessAddress,
	}
	return next, nil
}

// ResolveSetting picks the configuration version that governs a
// statement date: the one with the latest effective date at or before
// it. Returns shared.ErrNoApplicableConfig when every version takes
// effect later.
func ResolveSetting(settings []*InvoiceSetting, statementDate time.Time) (*InvoiceSetting, error) {
	candidates := make([]*InvoiceSetting, 0, len(settings))
	for _, s := range settings {
		if !s.EffectiveAsOf.After(statementDate) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return nil, shared.ErrNoApplicableConfig
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].EffectiveAsOf.After(candidates[j].EffectiveAsOf)
	})
	return candidates[0], nil
}
