package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// overrideTokenTTL is how long a duplicate confirmation stays valid
const overrideTokenTTL = 10 * time.Minute

// CreateSettingInput carries a new billing configuration version
type CreateSettingInput struct {
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
	// OverrideToken commits a submission the duplicate guard flagged
	OverrideToken string
}

// DuplicateError reports a guarded submission together with the token
// the caller can re-submit with to commit anyway
type DuplicateError struct {
	Token   billing.OverrideToken
	Matches int
}

// Error implements the error interface
func (e *DuplicateError) Error() string {
	return shared.ErrDuplicateDetected.Message
}

// Unwrap lets errors.Is match shared.ErrDuplicateDetected
func (e *DuplicateError) Unwrap() error {
	return shared.ErrDuplicateDetected
}

// SettingsService manages effective-dated billing configuration
type SettingsService struct {
	settingRepo   billing.InvoiceSettingRepository
	confirmations ConfirmationStore
	guard         *billing.DuplicateGuard[*billing.InvoiceSetting]
	logger        *zap.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingRepo billing.InvoiceSettingRepository, confirmations ConfirmationStore, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		settingRepo:   settingRepo,
		confirmations: confirmations,
		guard:         billing.NewDuplicateGuard(billing.SettingDuplicateKey),
		logger:        logger,
	}
}

// Resolve returns the configuration version governing a statement date
func (s *SettingsService) Resolve(ctx context.Context, statementDate time.Time) (*billing.InvoiceSetting, error) {
	return s.settingRepo.FindEffective(ctx, statementDate)
}

// List returns all configuration versions, newest first
func (s *SettingsService) List(ctx context.Context) ([]*billing.InvoiceSetting, error) {
	return s.settingRepo.FindAll(ctx)
}

// Create adds a new configuration version. A version with the same
// effective date as an existing one trips the duplicate guard unless
// the input carries a valid override token.
func (s *SettingsService) Create(ctx context.Context, input CreateSettingInput) (*billing.InvoiceSetting, error) {
	setting, err := billing.NewInvoiceSetting(input.EffectiveAsOf,
		input.RentMonthlyRate, input.WaterMonthlyRate, input.WaterServiceFee,
		input.StorageMonthlyRate, input.LateFeeRate, input.GraceDays, input.DueDay)
	if err != nil {
		return nil, err
	}
	setting.BusinessName = input.BusinessName
	setting.BusinessAddress = input.BusinessAddress

	if err := s.checkDuplicate(ctx, setting, input.OverrideToken); err != nil {
		return nil, err
	}

	if err := s.settingRepo.Save(ctx, setting); err != nil {
		return nil, err
	}

	s.logger.Info("Billing configuration created",
		zap.String("setting_id", setting.ID.String()),
		zap.Time("effective_as_of", setting.EffectiveAsOf))
	return setting, nil
}

// RaiseRates creates a new configuration version from the one governing
// fromDate with recurring rates increased by percent
func (s *SettingsService) RaiseRates(ctx context.Context, fromDate time.Time, percent decimal.Decimal, effectiveAsOf time.Time) (*billing.InvoiceSetting, error) {
	current, err := s.settingRepo.FindEffective(ctx, fromDate)
	if err != nil {
		return nil, err
	}

	next, err := current.RaiseRates(percent, effectiveAsOf)
	if err != nil {
		return nil, err
	}

	if err := s.settingRepo.Save(ctx, next); err != nil {
		return nil, err
	}

	s.logger.Info("Rates raised",
		zap.String("from_setting", current.ID.String()),
		zap.String("new_setting", next.ID.String()),
		zap.String("percent", percent.String()),
		zap.Time("effective_as_of", effectiveAsOf))
	return next, nil
}

// Get returns one configuration version by ID
func (s *SettingsService) Get(ctx context.Context, id uuid.UUID) (*billing.InvoiceSetting, error) {
	return s.settingRepo.FindByID(ctx, id)
}

func (s *SettingsService) checkDuplicate(ctx context.Context, candidate *billing.InvoiceSetting, overrideToken string) error {
	key := billing.SettingDuplicateKey(candidate)

	if overrideToken != "" {
		token, err := s.confirmations.Take(ctx, overrideToken)
		if err == nil && token.Key == key && !token.IsExpired(time.Now()) {
			return nil
		}
	}

	existing, err := s.settingRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	matches := s.guard.FindMatches(existing, candidate)
	if len(matches) == 0 {
		return nil
	}

	token := billing.NewOverrideToken(key, overrideTokenTTL)
	if err := s.confirmations.Put(ctx, token); err != nil {
		return err
	}
	return &DuplicateError{Token: token, Matches: len(matches)}
}
