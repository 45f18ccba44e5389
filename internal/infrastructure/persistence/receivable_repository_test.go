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
	"gorm.io/gorm"
)

func setupReceivableTestDB(t *testing.T) *gorm.DB {
	db := setupTestDB(t, &ReceivableModel{})

	// Mirror the partial unique index from the migrations: recurring
	// categories are unique per account and cycle, OTHER may repeat.
	err := db.Exec(`CREATE UNIQUE INDEX idx_receivable_recurring
		ON receivables (account_id, statement_date, category)
		WHERE category <> 'OTHER'`).Error
	require.NoError(t, err)

	return db
}

func mustReceivable(t *testing.T, accountID uuid.UUID, statementDate time.Time, category billing.ChargeCategory, amount int64, description string) *billing.Receivable {
	t.Helper()
	r, err := billing.NewReceivable(accountID, statementDate, category, decimal.NewFromInt(amount), description)
	require.NoError(t, err)
	return r
}

func TestReceivableRepository_SaveAndFind(t *testing.T) {
	db := setupReceivableTestDB(t)
	repo := NewReceivableRepository(db)
	ctx := context.Background()

	accountID := uuid.New()
	statement := day(2024, time.January, 1)

	t.Run("round-trips a receivable", func(t *testing.T) {
		rent := mustReceivable(t, accountID, statement, billing.CategoryRent, 1000, "Monthly rent")
		require.NoError(t, repo.Save(ctx, rent))

		found, err := repo.FindByID(ctx, rent.ID)
		require.NoError(t, err)
		assert.Equal(t, rent.ID, found.ID)
		assert.Equal(t, accountID, found.AccountID)
		assert.Equal(t, billing.CategoryRent, found.Category)
		assert.True(t, found.Amount.Equal(decimal.NewFromInt(1000)))
		assert.True(t, found.AllocatedAmount.IsZero())
		assert.Equal(t, "Monthly rent", found.Description)
	})

	t.Run("returns not found for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestReceivableRepository_RecurringUniquePerCycle(t *testing.T) {
	db := setupReceivableTestDB(t)
	repo := NewReceivableRepository(db)
	ctx := context.Background()

	accountID := uuid.New()
	statement := day(2024, time.January, 1)

	t.Run("rejects a second rent charge for the same cycle", func(t *testing.T) {
		first := mustReceivable(t, accountID, statement, billing.CategoryRent, 1000, "Monthly rent")
		require.NoError(t, repo.Save(ctx, first))

		second := mustReceivable(t, accountID, statement, billing.CategoryRent, 1000, "Monthly rent")
		err := repo.Save(ctx, second)
		assert.Equal(t, shared.ErrAlreadyExists, err)
	})

	t.Run("allows repeated OTHER charges", func(t *testing.T) {
		repair := mustReceivable(t, accountID, statement, billing.CategoryOther, 75, "Fence repair")
		require.NoError(t, repo.Save(ctx, repair))

		cleanup := mustReceivable(t, accountID, statement, billing.CategoryOther, 40, "Lot cleanup")
		require.NoError(t, repo.Save(ctx, cleanup))
	})

	t.Run("allows the same category next cycle", func(t *testing.T) {
		february := mustReceivable(t, accountID, day(2024, time.February, 1), billing.CategoryRent, 1000, "Monthly rent")
		require.NoError(t, repo.Save(ctx, february))
	})
}

func TestReceivableRepository_FindOpenByAccount(t *testing.T) {
	db := setupReceivableTestDB(t)
	repo := NewReceivableRepository(db)
	ctx := context.Background()

	accountID := uuid.New()
	statement := day(2024, time.January, 1)

	rent := mustReceivable(t, accountID, statement, billing.CategoryRent, 1000, "Monthly rent")
	require.NoError(t, rent.ApplyAllocation(decimal.NewFromInt(1000)))
	require.NoError(t, repo.Save(ctx, rent))

	water := mustReceivable(t, accountID, statement, billing.CategoryWater, 100, "Water usage")
	require.NoError(t, water.ApplyAllocation(decimal.NewFromInt(60)))
	require.NoError(t, repo.Save(ctx, water))

	otherAccount := mustReceivable(t, uuid.New(), statement, billing.CategoryRent, 500, "Monthly rent")
	require.NoError(t, repo.Save(ctx, otherAccount))

	open, err := repo.FindOpenByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, water.ID, open[0].ID)
	assert.True(t, open[0].Outstanding().Equal(decimal.NewFromInt(40)))
}

func TestReceivableRepository_StatementMonthWindow(t *testing.T) {
	db := setupReceivableTestDB(t)
	repo := NewReceivableRepository(db)
	ctx := context.Background()

	accountID := uuid.New()

	january := mustReceivable(t, accountID, day(2024, time.January, 1), billing.CategoryRent, 1000, "Monthly rent")
	require.NoError(t, repo.Save(ctx, january))
	midMonth := mustReceivable(t, accountID, day(2024, time.January, 15), billing.CategoryOther, 75, "Fence repair")
	require.NoError(t, repo.Save(ctx, midMonth))
	february := mustReceivable(t, accountID, day(2024, time.February, 1), billing.CategoryRent, 1000, "Monthly rent")
	require.NoError(t, repo.Save(ctx, february))

	t.Run("finds charges anywhere in the statement month", func(t *testing.T) {
		charges, err := repo.FindByAccountAndStatementDate(ctx, accountID, day(2024, time.January, 1))
		require.NoError(t, err)
		assert.Len(t, charges, 2)
	})

	t.Run("finds the recurring charge by category", func(t *testing.T) {
		found, err := repo.FindByAccountStatementCategory(ctx, accountID, day(2024, time.January, 1), billing.CategoryRent)
		require.NoError(t, err)
		assert.Equal(t, january.ID, found.ID)

		_, err = repo.FindByAccountStatementCategory(ctx, accountID, day(2024, time.January, 1), billing.CategoryLateFee)
		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestReceivableRepository_SaveUpdatesAllocation(t *testing.T) {
	db := setupReceivableTestDB(t)
	repo := NewReceivableRepository(db)
	ctx := context.Background()

	rent := mustReceivable(t, uuid.New(), day(2024, time.January, 1), billing.CategoryRent, 1000, "Monthly rent")
	require.NoError(t, repo.Save(ctx, rent))

	require.NoError(t, rent.ApplyAllocation(decimal.NewFromInt(900)))
	require.NoError(t, repo.Save(ctx, rent))

	found, err := repo.FindByID(ctx, rent.ID)
	require.NoError(t, err)
	assert.True(t, found.AllocatedAmount.Equal(decimal.NewFromInt(900)))
	assert.True(t, found.Outstanding().Equal(decimal.NewFromInt(100)))
}
