package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSettingsService() (*SettingsService, *fakeSettingRepo, *fakeConfirmationStore) {
	repo := newFakeSettingRepo()
	confirmations := newFakeConfirmationStore()
	return NewSettingsService(repo, confirmations, zap.NewNop()), repo, confirmations
}

func validSettingInput(effective time.Time) CreateSettingInput {
	return CreateSettingInput{
		EffectiveAsOf:      effective,
		RentMonthlyRate:    decimal.NewFromInt(1000),
		WaterMonthlyRate:   decimal.NewFromInt(20),
		WaterServiceFee:    decimal.Zero,
		StorageMonthlyRate: decimal.NewFromInt(45),
		LateFeeRate:        decimal.NewFromInt(5),
		BusinessName:       "Sunrise Properties LLC",
	}
}

func TestSettingsServiceCreateAndResolve(t *testing.T) {
	service, _, _ := newSettingsService()
	ctx := context.Background()

	v1, err := service.Create(ctx, validSettingInput(day(2024, time.June, 1)))
	require.NoError(t, err)
	assert.Equal(t, 10, v1.GraceDays, "defaults applied")

	input := validSettingInput(day(2025, time.June, 1))
	input.RentMonthlyRate = decimal.NewFromInt(1100)
	v2, err := service.Create(ctx, input)
	require.NoError(t, err)

	got, err := service.Resolve(ctx, day(2025, time.January, 15))
	require.NoError(t, err)
	assert.Equal(t, v1.ID, got.ID)

	got, err = service.Resolve(ctx, day(2025, time.July, 1))
	require.NoError(t, err)
	assert.Equal(t, v2.ID, got.ID)

	_, err = service.Resolve(ctx, day(2024, time.January, 1))
	assert.ErrorIs(t, err, shared.ErrNoApplicableConfig)
}

func TestSettingsServiceDuplicateGuard(t *testing.T) {
	service, repo, _ := newSettingsService()
	ctx := context.Background()

	_, err := service.Create(ctx, validSettingInput(day(2024, time.June, 1)))
	require.NoError(t, err)

	// Same effective date trips the guard
	_, err = service.Create(ctx, validSettingInput(day(2024, time.June, 1)))
	require.Error(t, err)
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))

	// Token commits the duplicate
	input := validSettingInput(day(2024, time.June, 1))
	input.OverrideToken = dup.Token.Token
	_, err = service.Create(ctx, input)
	require.NoError(t, err)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSettingsServiceRaiseRates(t *testing.T) {
	service, _, _ := newSettingsService()
	ctx := context.Background()

	_, err := service.Create(ctx, validSettingInput(day(2024, time.June, 1)))
	require.NoError(t, err)

	next, err := service.RaiseRates(ctx, day(2025, time.January, 1), decimal.NewFromInt(10), day(2025, time.June, 1))
	require.NoError(t, err)
	assert.True(t, next.RentMonthlyRate.Equal(decimal.NewFromInt(1100)))
	assert.True(t, next.WaterMonthlyRate.Equal(decimal.NewFromInt(22)))

	// The new version governs dates from its effective date on
	got, err := service.Resolve(ctx, day(2025, time.July, 1))
	require.NoError(t, err)
	assert.Equal(t, next.ID, got.ID)

	// Earlier dates keep the old rates
	got, err = service.Resolve(ctx, day(2025, time.January, 1))
	require.NoError(t, err)
	assert.True(t, got.RentMonthlyRate.Equal(decimal.NewFromInt(1000)))
}

func TestReceivableServiceOneOffCharge(t *testing.T) {
	base := newBillingFixture(t)
	confirmations := newFakeConfirmationStore()
	service := NewReceivableService(base.receivables, base.accounts, confirmations, zap.NewNop())
	ctx := context.Background()

	input := CreateChargeInput{
		AccountID:     base.accountID,
		StatementDate: day(2025, time.January, 1),
		Category:      "OTHER",
		Amount:        decimal.NewFromInt(75),
		Description:   "Gate remote replacement",
	}

	charge, err := service.Create(ctx, input)
	require.NoError(t, err)
	assert.True(t, charge.Outstanding().Equal(decimal.NewFromInt(75)))

	// Identical entry trips the guard, token overrides
	_, err = service.Create(ctx, input)
	require.Error(t, err)
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))

	input.OverrideToken = dup.Token.Token
	_, err = service.Create(ctx, input)
	require.NoError(t, err)

	others, err := service.ListByCategory(ctx, "OTHER")
	require.NoError(t, err)
	assert.Len(t, others, 2)

	unpaid, err := service.ListUnpaid(ctx)
	require.NoError(t, err)
	assert.Len(t, unpaid, 2)
}
