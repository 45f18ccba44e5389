package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/metering"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProposedCharge is one charge a billing run would create
type ProposedCharge struct {
	Category    billing.ChargeCategory `json:"category"`
	Amount      decimal.Decimal        `json:"amount"`
	Description string                 `json:"description"`
}

// AccountGenerationResult reports one account's slice of a billing run
type AccountGenerationResult struct {
	AccountID uuid.UUID                `json:"account_id"`
	LotCode   string                   `json:"lot_code,omitempty"`
	Created   []ProposedCharge         `json:"created"`
	Skipped   []billing.ChargeCategory `json:"skipped,omitempty"`
	Errors    []string                 `json:"errors,omitempty"`
}

// GenerationReport summarizes a billing run. Accounts fail
// independently; a missing meter reading stops only that account's
// water charge, never the run.
type GenerationReport struct {
	StatementDate  time.Time                 `json:"statement_date"`
	ProcessingDate time.Time                 `json:"processing_date"`
	Preview        bool                      `json:"preview"`
	Accounts       []AccountGenerationResult `json:"accounts"`
	TotalCreated   int                       `json:"total_created"`
	TotalSkipped   int                       `json:"total_skipped"`
	TotalErrors    int                       `json:"total_errors"`
}

// GenerationService produces the recurring monthly charges: rent,
// water, storage and late fees. Runs are idempotent; a charge that
// already exists for an account, statement date and category is
// skipped, so a crashed run can simply be repeated.
type GenerationService struct {
	accountRepo    property.AccountRepository
	lotRepo        property.LotRepository
	meterRepo      property.WaterMeterRepository
	readingRepo    metering.MeterReadingRepository
	receivableRepo billing.ReceivableRepository
	paymentRepo    billing.PaymentRepository
	allocationRepo billing.AllocationRepository
	settingRepo    billing.InvoiceSettingRepository
	logger         *zap.Logger
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(
	accountRepo property.AccountRepository,
	lotRepo property.LotRepository,
	meterRepo property.WaterMeterRepository,
	readingRepo metering.MeterReadingRepository,
	receivableRepo billing.ReceivableRepository,
	paymentRepo billing.PaymentRepository,
	allocationRepo billing.AllocationRepository,
	settingRepo billing.InvoiceSettingRepository,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		accountRepo:    accountRepo,
		lotRepo:        lotRepo,
		meterRepo:      meterRepo,
		readingRepo:    readingRepo,
		receivableRepo: receivableRepo,
		paymentRepo:    paymentRepo,
		allocationRepo: allocationRepo,
		settingRepo:    settingRepo,
		logger:         logger,
	}
}

// Preview computes what a billing run would create without persisting
func (s *GenerationService) Preview(ctx context.Context, statementDate, processingDate time.Time) (*GenerationReport, error) {
	return s.run(ctx, statementDate, processingDate, false)
}

// Generate creates the recurring charges for a statement date
func (s *GenerationService) Generate(ctx context.Context, statementDate, processingDate time.Time) (*GenerationReport, error) {
	return s.run(ctx, statementDate, processingDate, true)
}

func (s *GenerationService) run(ctx context.Context, statementDate, processingDate time.Time, commit bool) (*GenerationReport, error) {
	setting, err := s.settingRepo.FindEffective(ctx, statementDate)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	report := &GenerationReport{
		StatementDate:  statementDate,
		ProcessingDate: processingDate,
		Preview:        !commit,
		Accounts:       make([]AccountGenerationResult, 0, len(accounts)),
	}

	for i := range accounts {
		account := &accounts[i]
		result := s.runAccount(ctx, account, setting, statementDate, processingDate, commit)
		report.TotalCreated += len(result.Created)
		report.TotalSkipped += len(result.Skipped)
		report.TotalErrors += len(result.Errors)
		report.Accounts = append(report.Accounts, result)
	}

	s.logger.Info("Billing run finished",
		zap.Time("statement_date", statementDate),
		zap.Bool("preview", !commit),
		zap.Int("accounts", len(accounts)),
		zap.Int("created", report.TotalCreated),
		zap.Int("skipped", report.TotalSkipped),
		zap.Int("errors", report.TotalErrors))
	return report, nil
}

func (s *GenerationService) runAccount(ctx context.Context, account *property.Account, setting *billing.InvoiceSetting, statementDate, processingDate time.Time, commit bool) AccountGenerationResult {
	result := AccountGenerationResult{
		AccountID: account.ID,
		Created:   make([]ProposedCharge, 0, 4),
	}

	var lot *property.Lot
	if account.LotID != nil {
		var err error
		lot, err = s.lotRepo.FindByID(ctx, *account.LotID)
		if err != nil {
			result.Errors = append(result.Errors, "lot lookup failed: "+err.Error())
			return result
		}
		result.LotCode = lot.Code
	}

	// Rent
	rentRate := setting.RentMonthlyRate
	if account.RentalRateOverride != nil {
		rentRate = *account.RentalRateOverride
	}
	if rentRate.IsPositive() {
		s.propose(ctx, account, statementDate, billing.CategoryRent, rentRate, "Monthly rent", commit, &result)
	}

	// Water, only when the lot has a meter
	if lot != nil {
		if charge, err := s.waterCharge(ctx, lot, setting, statementDate); err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else if charge != nil {
			s.propose(ctx, account, statementDate, billing.CategoryWater, charge.Amount, charge.Description, commit, &result)
		}
	}

	// Storage
	if lot != nil {
		if fee := lot.StorageFee(setting.StorageMonthlyRate); fee.IsPositive() {
			s.propose(ctx, account, statementDate, billing.CategoryStorage, fee, "Storage unit", commit, &result)
		}
	}

	// Late fee for the previous cycle
	fee, err := s.lateFee(ctx, account.ID, statementDate, processingDate)
	if err != nil {
		result.Errors = append(result.Errors, "late fee: "+err.Error())
	} else if fee.IsPositive() {
		prior := statementDate.AddDate(0, -1, 0)
		desc := fmt.Sprintf("Late fee for %s", prior.Format("January 2006"))
		s.propose(ctx, account, statementDate, billing.CategoryLateFee, fee, desc, commit, &result)
	}

	return result
}

// propose records a charge in the result and, when committing, saves
// it. Existing charges for the same cycle and category are skipped,
// which also absorbs unique-constraint races between concurrent runs.
func (s *GenerationService) propose(ctx context.Context, account *property.Account, statementDate time.Time, category billing.ChargeCategory, amount decimal.Decimal, description string, commit bool, result *AccountGenerationResult) {
	_, err := s.receivableRepo.FindByAccountStatementCategory(ctx, account.ID, statementDate, category)
	if err == nil {
		result.Skipped = append(result.Skipped, category)
		return
	}
	if !errors.Is(err, shared.ErrNotFound) {
		result.Errors = append(result.Errors, string(category)+": "+err.Error())
		return
	}

	if !commit {
		result.Created = append(result.Created, ProposedCharge{Category: category, Amount: amount, Description: description})
		return
	}

	receivable, err := billing.NewReceivable(account.ID, statementDate, category, amount, description)
	if err != nil {
		result.Errors = append(result.Errors, string(category)+": "+err.Error())
		return
	}
	if err := s.receivableRepo.Save(ctx, receivable); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			result.Skipped = append(result.Skipped, category)
			return
		}
		result.Errors = append(result.Errors, string(category)+": "+err.Error())
		return
	}
	result.Created = append(result.Created, ProposedCharge{Category: category, Amount: amount, Description: description})
}

type waterChargeProposal struct {
	Amount      decimal.Decimal
	Description string
}

// waterCharge computes the water charge for a lot's meter. A lot
// without a meter is simply not billed for water; a metered lot with
// no reading for the statement month is an error the report surfaces.
func (s *GenerationService) waterCharge(ctx context.Context, lot *property.Lot, setting *billing.InvoiceSetting, statementDate time.Time) (*waterChargeProposal, error) {
	meter, err := s.meterRepo.FindByLotID(ctx, lot.ID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	reading, err := s.readingRepo.FindByMeterAndStatementDate(ctx, meter.ID, statementDate)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrMissingMeterReading
	}
	if err != nil {
		return nil, err
	}

	usage := decimal.NewFromInt(int64(reading.Usage()))
	amount := usage.Mul(setting.WaterMonthlyRate).Add(setting.WaterServiceFee)
	if !amount.IsPositive() {
		return nil, nil
	}

	return &waterChargeProposal{
		Amount:      amount,
		Description: fmt.Sprintf("Water usage %d units", reading.Usage()),
	}, nil
}

// lateFee computes the fee for the cycle before statementDate: the
// portion of its recurring charges not covered by money the account
// had when the cycle went overdue. Only the immediately preceding
// cycle is considered and earlier late fees never feed the base, so
// fees do not compound.
func (s *GenerationService) lateFee(ctx context.Context, accountID uuid.UUID, statementDate, processingDate time.Time) (decimal.Decimal, error) {
	prior := statementDate.AddDate(0, -1, 0)

	priorSetting, err := s.settingRepo.FindEffective(ctx, prior)
	if errors.Is(err, shared.ErrNoApplicableConfig) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}

	overdue := priorSetting.OverdueDate(prior)
	if !processingDate.After(overdue) {
		return decimal.Zero, nil
	}

	priorReceivables, err := s.receivableRepo.FindByAccountAndStatementDate(ctx, accountID, prior)
	if err != nil {
		return decimal.Zero, err
	}

	priorCycle := make(map[uuid.UUID]bool, len(priorReceivables))
	charges := decimal.Zero
	for _, r := range priorReceivables {
		if r.Category == billing.CategoryLateFee || !r.Category.IsRecurring() {
			continue
		}
		charges = charges.Add(r.Amount)
		priorCycle[r.ID] = true
	}
	if !charges.IsPositive() {
		return decimal.Zero, nil
	}

	payments, err := s.paymentRepo.FindByAccountReceivedOnOrBefore(ctx, accountID, overdue)
	if err != nil {
		return decimal.Zero, err
	}

	// Money received by the overdue date counts toward the cycle unless
	// it already went to some other charge.
	available := decimal.Zero
	for _, p := range payments {
		available = available.Add(p.Amount)
		allocations, err := s.allocationRepo.FindByPayment(ctx, p.ID)
		if err != nil {
			return decimal.Zero, err
		}
		for _, alloc := range allocations {
			if !priorCycle[alloc.ReceivableID] {
				available = available.Sub(alloc.Amount)
			}
		}
	}

	return billing.ComputeLateFee(charges, available), nil
}
