package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/metering"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type billingFixture struct {
	accounts    *fakeAccountRepo
	lots        *fakeLotRepo
	meters      *fakeMeterRepo
	readings    *fakeReadingRepo
	receivables *fakeReceivableRepo
	payments    *fakePaymentRepo
	allocations *fakeAllocationRepo
	settings    *fakeSettingRepo
	uow         *fakeUnitOfWork

	generation *GenerationService
	allocation *AllocationService

	accountID uuid.UUID
	lotID     uuid.UUID
	meterID   uuid.UUID
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newBillingFixture wires a single metered account against a
// configuration of 1000 rent, 20 per water unit, 10 grace days.
func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()

	f := &billingFixture{
		accounts:    newFakeAccountRepo(),
		lots:        newFakeLotRepo(),
		meters:      newFakeMeterRepo(),
		readings:    newFakeReadingRepo(),
		receivables: newFakeReceivableRepo(),
		payments:    newFakePaymentRepo(),
		allocations: newFakeAllocationRepo(),
		settings:    newFakeSettingRepo(),
	}
	f.uow = &fakeUnitOfWork{receivables: f.receivables, payments: f.payments, allocations: f.allocations}

	setting, err := billing.NewInvoiceSetting(day(2024, time.June, 1),
		decimal.NewFromInt(1000), decimal.NewFromInt(20), decimal.Zero,
		decimal.NewFromInt(45), decimal.NewFromInt(5), 10, 1)
	require.NoError(t, err)
	require.NoError(t, f.settings.Save(context.Background(), setting))

	lot, err := property.NewLot("AP12", "AP", "12 Main St", "Springfield, IL 62704")
	require.NoError(t, err)
	require.NoError(t, f.lots.Save(context.Background(), lot))
	f.lotID = lot.ID

	meter, err := property.NewWaterMeter(7, &lot.ID)
	require.NoError(t, err)
	require.NoError(t, f.meters.Save(context.Background(), meter))
	f.meterID = meter.ID

	account, err := property.NewAccount(&lot.ID, nil, property.BillPreferenceNone)
	require.NoError(t, err)
	require.NoError(t, f.accounts.Save(context.Background(), account))
	f.accountID = account.ID

	logger := zap.NewNop()
	f.generation = NewGenerationService(f.accounts, f.lots, f.meters, f.readings,
		f.receivables, f.payments, f.allocations, f.settings, logger)
	f.allocation = NewAllocationService(f.uow, f.accounts, nil, logger)

	return f
}

func (f *billingFixture) addReading(t *testing.T, statement time.Time, prev, curr int) {
	t.Helper()
	reading, err := metering.NewMeterReading(f.meterID,
		statement.AddDate(0, -2, 27), statement.AddDate(0, -1, 27), prev, curr, statement)
	require.NoError(t, err)
	require.NoError(t, f.readings.Save(context.Background(), reading))
}

func (f *billingFixture) addPayment(t *testing.T, amount int64, received time.Time) *billing.Payment {
	t.Helper()
	payment, err := billing.NewPayment(f.accountID, decimal.NewFromInt(amount), "Jane Doe", received, received)
	require.NoError(t, err)
	require.NoError(t, f.payments.Save(context.Background(), payment))
	return payment
}

func chargeAmount(t *testing.T, result AccountGenerationResult, category billing.ChargeCategory) decimal.Decimal {
	t.Helper()
	for _, c := range result.Created {
		if c.Category == category {
			return c.Amount
		}
	}
	t.Fatalf("no %s charge in result", category)
	return decimal.Zero
}

func hasCategory(result AccountGenerationResult, category billing.ChargeCategory) bool {
	for _, c := range result.Created {
		if c.Category == category {
			return true
		}
	}
	return false
}

func TestGenerateFirstCycle(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	jan := day(2025, time.January, 1)
	f.addReading(t, jan, 1200, 1205)

	report, err := f.generation.Generate(ctx, jan, jan)
	require.NoError(t, err)
	require.Len(t, report.Accounts, 1)

	result := report.Accounts[0]
	assert.Empty(t, result.Errors)
	assert.Equal(t, "AP12", result.LotCode)
	assert.True(t, chargeAmount(t, result, billing.CategoryRent).Equal(decimal.NewFromInt(1000)))
	assert.True(t, chargeAmount(t, result, billing.CategoryWater).Equal(decimal.NewFromInt(100)), "5 units at 20")
	assert.False(t, hasCategory(result, billing.CategoryStorage), "lot has no storage")
	assert.False(t, hasCategory(result, billing.CategoryLateFee), "no prior cycle yet")
	assert.Equal(t, 2, report.TotalCreated)
}

func TestGenerateIsIdempotent(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	jan := day(2025, time.January, 1)
	f.addReading(t, jan, 1200, 1205)

	_, err := f.generation.Generate(ctx, jan, jan)
	require.NoError(t, err)

	report, err := f.generation.Generate(ctx, jan, jan)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalCreated)
	assert.Equal(t, 2, report.TotalSkipped)

	open, err := f.receivables.FindOpenByAccount(ctx, f.accountID)
	require.NoError(t, err)
	assert.Len(t, open, 2, "rerun must not double-bill")
}

func TestPreviewPersistsNothing(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	jan := day(2025, time.January, 1)
	f.addReading(t, jan, 1200, 1205)

	report, err := f.generation.Preview(ctx, jan, jan)
	require.NoError(t, err)
	assert.True(t, report.Preview)
	assert.Equal(t, 2, report.TotalCreated)

	open, err := f.receivables.FindOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestGenerateMissingReadingFailsOnlyWater(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	jan := day(2025, time.January, 1)
	// no reading added

	report, err := f.generation.Generate(ctx, jan, jan)
	require.NoError(t, err)

	result := report.Accounts[0]
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "meter reading")
	assert.True(t, hasCategory(result, billing.CategoryRent), "rent is still billed")
	assert.False(t, hasCategory(result, billing.CategoryWater))
}

func TestGenerateUsesRentOverrideAndStorage(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	jan := day(2025, time.January, 1)
	f.addReading(t, jan, 1200, 1205)

	account, err := f.accounts.FindByID(ctx, f.accountID)
	require.NoError(t, err)
	override := decimal.NewFromInt(850)
	require.NoError(t, account.SetRentalRateOverride(&override))

	lot, err := f.lots.FindByID(ctx, f.lotID)
	require.NoError(t, err)
	require.NoError(t, lot.EnableStorage(nil))

	report, err := f.generation.Generate(ctx, jan, jan)
	require.NoError(t, err)

	result := report.Accounts[0]
	assert.True(t, chargeAmount(t, result, billing.CategoryRent).Equal(decimal.NewFromInt(850)))
	assert.True(t, chargeAmount(t, result, billing.CategoryStorage).Equal(decimal.NewFromInt(45)))
}

func TestGenerateNoApplicableConfig(t *testing.T) {
	f := newBillingFixture(t)
	_, err := f.generation.Generate(context.Background(), day(2023, time.January, 1), day(2023, time.January, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNoApplicableConfig)
}

func TestLateFeeAfterPartialPayment(t *testing.T) {
	// January bills 1100 (1000 rent, 100 water). A 900 payment arrives
	// before the overdue date and is allocated. February's late fee is
	// the uncovered 200.
	f := newBillingFixture(t)
	ctx := context.Background()
	jan := day(2025, time.January, 1)
	feb := day(2025, time.February, 1)
	f.addReading(t, jan, 1200, 1205)
	f.addReading(t, feb, 1205, 1210)

	_, err := f.generation.Generate(ctx, jan, jan)
	require.NoError(t, err)

	f.addPayment(t, 900, day(2025, time.January, 5))
	_, err = f.allocation.RunForAccount(ctx, f.accountID)
	require.NoError(t, err)

	report, err := f.generation.Generate(ctx, feb, day(2025, time.February, 1))
	require.NoError(t, err)

	result := report.Accounts[0]
	assert.Empty(t, result.Errors)
	assert.True(t, chargeAmount(t, result, billing.CategoryLateFee).Equal(decimal.NewFromInt(200)))
}

func TestLateFeeWithoutAnyPayment(t *testing.T) {
	// Nothing was paid for January, so February's late fee is the full
	// 1100 the cycle billed.
	f := newBillingFixture(t)
	ctx := context.Background()
	jan := day(2025, time.January, 1)
	feb := day(2025, time.February, 1)
	f.addReading(t, jan, 1200, 1205)
	f.addReading(t, feb, 1205, 1210)

	_, err := f.generation.Generate(ctx, jan, jan)
	require.NoError(t, err)

	report, err := f.generation.Generate(ctx, feb, feb)
	require.NoError(t, err)

	result := report.Accounts[0]
	assert.True(t, chargeAmount(t, result, billing.CategoryLateFee).Equal(decimal.NewFromInt(1100)))
}

func TestLateFeeSkippedBeforeOverdueDate(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	jan := day(2025, time.January, 1)
	feb := day(2025, time.February, 1)
	f.addReading(t, jan, 1200, 1205)
	f.addReading(t, feb, 1205, 1210)

	_, err := f.generation.Generate(ctx, jan, jan)
	require.NoError(t, err)

	// Early run on January 8th, before the January 11th overdue date
	report, err := f.generation.Generate(ctx, feb, day(2025, time.January, 8))
	require.NoError(t, err)
	assert.False(t, hasCategory(report.Accounts[0], billing.CategoryLateFee))
}

func TestLateFeeDoesNotCompound(t *testing.T) {
	// February carries a 1100 late fee for January. March's fee is
	// still 1100, February's own recurring charges, not 2200.
	f := newBillingFixture(t)
	ctx := context.Background()
	jan := day(2025, time.January, 1)
	feb := day(2025, time.February, 1)
	mar := day(2025, time.March, 1)
	f.addReading(t, jan, 1200, 1205)
	f.addReading(t, feb, 1205, 1210)
	f.addReading(t, mar, 1210, 1215)

	_, err := f.generation.Generate(ctx, jan, jan)
	require.NoError(t, err)
	_, err = f.generation.Generate(ctx, feb, feb)
	require.NoError(t, err)

	report, err := f.generation.Generate(ctx, mar, mar)
	require.NoError(t, err)

	result := report.Accounts[0]
	assert.True(t, chargeAmount(t, result, billing.CategoryLateFee).Equal(decimal.NewFromInt(1100)))
}

func TestLateFeeAtMostOnePerCycle(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	jan := day(2025, time.January, 1)
	feb := day(2025, time.February, 1)
	f.addReading(t, jan, 1200, 1205)
	f.addReading(t, feb, 1205, 1210)

	_, err := f.generation.Generate(ctx, jan, jan)
	require.NoError(t, err)
	_, err = f.generation.Generate(ctx, feb, feb)
	require.NoError(t, err)

	report, err := f.generation.Generate(ctx, feb, feb)
	require.NoError(t, err)

	fees, err := f.receivables.FindByCategory(ctx, billing.CategoryLateFee)
	require.NoError(t, err)
	assert.Len(t, fees, 1)
	assert.Contains(t, report.Accounts[0].Skipped, billing.CategoryLateFee)
}

func TestGenerateSkipsClosedAccounts(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	jan := day(2025, time.January, 1)
	f.addReading(t, jan, 1200, 1205)

	account, err := f.accounts.FindByID(ctx, f.accountID)
	require.NoError(t, err)
	require.NoError(t, account.Close(time.Now()))

	report, err := f.generation.Generate(ctx, jan, jan)
	require.NoError(t, err)
	assert.Empty(t, report.Accounts)
	assert.Equal(t, 0, report.TotalCreated)
}

func TestGenerationThenAllocationSettlesLedger(t *testing.T) {
	// Full cycle: bill January, pay 900, allocate. Rent keeps a 100
	// balance, water stays open, and the pool is empty.
	f := newBillingFixture(t)
	ctx := context.Background()
	jan := day(2025, time.January, 1)
	f.addReading(t, jan, 1200, 1205)

	_, err := f.generation.Generate(ctx, jan, jan)
	require.NoError(t, err)

	payment := f.addPayment(t, 900, day(2025, time.January, 5))
	plan, err := f.allocation.RunForAccount(ctx, f.accountID)
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)

	rent, err := f.receivables.FindByAccountStatementCategory(ctx, f.accountID, jan, billing.CategoryRent)
	require.NoError(t, err)
	assert.True(t, rent.Outstanding().Equal(decimal.NewFromInt(100)))

	water, err := f.receivables.FindByAccountStatementCategory(ctx, f.accountID, jan, billing.CategoryWater)
	require.NoError(t, err)
	assert.True(t, water.Outstanding().Equal(decimal.NewFromInt(100)))

	stored, err := f.payments.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.True(t, stored.Available().IsZero())

	var notFoundErr error
	_, notFoundErr = f.receivables.FindByAccountStatementCategory(ctx, f.accountID, jan, billing.CategoryStorage)
	assert.True(t, errors.Is(notFoundErr, shared.ErrNotFound))
}
