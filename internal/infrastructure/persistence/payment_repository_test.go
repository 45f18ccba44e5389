package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/billing"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPayment(t *testing.T, accountID uuid.UUID, amount int64, received time.Time) *billing.Payment {
	t.Helper()
	p, err := billing.NewPayment(accountID, decimal.NewFromInt(amount), "Jane Doe", received, received)
	require.NoError(t, err)
	return p
}

func TestPaymentRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t, &PaymentModel{})
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	accountID := uuid.New()
	payment := mustPayment(t, accountID, 900, day(2024, time.January, 5))
	require.NoError(t, repo.Save(ctx, payment))

	found, err := repo.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, found.ID)
	assert.Equal(t, accountID, found.AccountID)
	assert.True(t, found.Amount.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, "Jane Doe", found.Payer)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.Equal(t, shared.ErrNotFound, err)
}

func TestPaymentRepository_FindAvailableByAccount(t *testing.T) {
	db := setupTestDB(t, &PaymentModel{})
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	accountID := uuid.New()

	// Newest saved first so ordering has to come from received_date
	newer := mustPayment(t, accountID, 200, day(2024, time.February, 3))
	require.NoError(t, repo.Save(ctx, newer))

	older := mustPayment(t, accountID, 900, day(2024, time.January, 5))
	require.NoError(t, repo.Save(ctx, older))

	spent := mustPayment(t, accountID, 100, day(2024, time.January, 2))
	require.NoError(t, spent.Apply(decimal.NewFromInt(100)))
	require.NoError(t, repo.Save(ctx, spent))

	available, err := repo.FindAvailableByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, older.ID, available[0].ID)
	assert.Equal(t, newer.ID, available[1].ID)
}

func TestPaymentRepository_FindReceivedSince(t *testing.T) {
	db := setupTestDB(t, &PaymentModel{})
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	accountID := uuid.New()
	require.NoError(t, repo.Save(ctx, mustPayment(t, accountID, 900, day(2024, time.January, 5))))
	require.NoError(t, repo.Save(ctx, mustPayment(t, accountID, 200, day(2024, time.February, 3))))
	require.NoError(t, repo.Save(ctx, mustPayment(t, accountID, 150, day(2024, time.March, 1))))

	recent, err := repo.FindReceivedSince(ctx, day(2024, time.February, 1))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, day(2024, time.March, 1), recent[0].ReceivedDate.UTC())
}

func TestPaymentRepository_FindByAccountReceivedOnOrBefore(t *testing.T) {
	db := setupTestDB(t, &PaymentModel{})
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	accountID := uuid.New()
	require.NoError(t, repo.Save(ctx, mustPayment(t, accountID, 900, day(2024, time.January, 5))))
	require.NoError(t, repo.Save(ctx, mustPayment(t, accountID, 200, day(2024, time.February, 3))))

	asOf, err := repo.FindByAccountReceivedOnOrBefore(ctx, accountID, day(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, asOf, 1)
	assert.True(t, asOf[0].Amount.Equal(decimal.NewFromInt(900)))
}

func TestPaymentRepository_Delete(t *testing.T) {
	db := setupTestDB(t, &PaymentModel{})
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	payment := mustPayment(t, uuid.New(), 900, day(2024, time.January, 5))
	require.NoError(t, repo.Save(ctx, payment))

	require.NoError(t, repo.Delete(ctx, payment.ID))

	_, err := repo.FindByID(ctx, payment.ID)
	assert.Equal(t, shared.ErrNotFound, err)

	err = repo.Delete(ctx, payment.ID)
	assert.Equal(t, shared.ErrNotFound, err)
}
