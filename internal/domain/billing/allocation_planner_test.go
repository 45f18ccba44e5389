package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustReceivable(t *testing.T, accountID uuid.UUID, statement time.Time, category ChargeCategory, amount int64) *Receivable {
	t.Helper()
	r, err := NewReceivable(accountID, statement, category, decimal.NewFromInt(amount), "")
	require.NoError(t, err)
	return r
}

func mustPayment(t *testing.T, accountID uuid.UUID, amount int64, received time.Time) *Payment {
	t.Helper()
	p, err := NewPayment(accountID, decimal.NewFromInt(amount), "Payer", received, received)
	require.NoError(t, err)
	return p
}

func TestAllocationPlannerSingleCycle(t *testing.T) {
	// January: 1000 rent and 100 water, one 900 payment. Rent is
	// settled first and absorbs the whole payment minus nothing; the
	// remaining 100 of rent and all of water stay open.
	accountID := uuid.New()
	jan := statementDate(2025, time.January)

	rent := mustReceivable(t, accountID, jan, CategoryRent, 1000)
	water := mustReceivable(t, accountID, jan, CategoryWater, 100)
	payment := mustPayment(t, accountID, 900, time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC))

	planner := NewAllocationPlanner()
	plan, err := planner.Plan(accountID, []*Receivable{water, rent}, []*Payment{payment})
	require.NoError(t, err)

	require.Len(t, plan.Entries, 1)
	assert.Equal(t, rent.ID, plan.Entries[0].ReceivableID)
	assert.Equal(t, payment.ID, plan.Entries[0].PaymentID)
	assert.True(t, plan.Entries[0].Amount.Equal(decimal.NewFromInt(900)))

	assert.True(t, plan.TotalAllocated.Equal(decimal.NewFromInt(900)))
	assert.True(t, plan.RemainingCredit.IsZero())
	assert.Empty(t, plan.FullyPaidReceivables)
	assert.Equal(t, []uuid.UUID{rent.ID}, plan.PartiallyPaidReceivables)
}

func TestAllocationPlannerCategoryOrderWithinDate(t *testing.T) {
	accountID := uuid.New()
	jan := statementDate(2025, time.January)

	water := mustReceivable(t, accountID, jan, CategoryWater, 100)
	storage := mustReceivable(t, accountID, jan, CategoryStorage, 45)
	rent := mustReceivable(t, accountID, jan, CategoryRent, 1000)
	lateFee := mustReceivable(t, accountID, jan, CategoryLateFee, 50)

	payment := mustPayment(t, accountID, 1145, time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC))

	plan, err := NewAllocationPlanner().Plan(accountID, []*Receivable{lateFee, water, storage, rent}, []*Payment{payment})
	require.NoError(t, err)

	require.Len(t, plan.Entries, 4)
	assert.Equal(t, CategoryRent, plan.Entries[0].Category)
	assert.Equal(t, CategoryWater, plan.Entries[1].Category)
	assert.Equal(t, CategoryStorage, plan.Entries[2].Category)
	assert.Equal(t, CategoryLateFee, plan.Entries[3].Category)

	assert.Len(t, plan.FullyPaidReceivables, 3)
	assert.Equal(t, []uuid.UUID{lateFee.ID}, plan.PartiallyPaidReceivables)
	assert.True(t, plan.TotalAllocated.Equal(decimal.NewFromInt(1145)))
}

func TestAllocationPlannerOldestStatementFirst(t *testing.T) {
	// A February water charge must wait until the January charges are
	// settled, even though water outranks nothing across cycles.
	accountID := uuid.New()
	jan := statementDate(2025, time.January)
	feb := statementDate(2025, time.February)

	febWater := mustReceivable(t, accountID, feb, CategoryWater, 100)
	janLateFee := mustReceivable(t, accountID, jan, CategoryLateFee, 50)

	payment := mustPayment(t, accountID, 60, time.Date(2025, time.February, 2, 0, 0, 0, 0, time.UTC))

	plan, err := NewAllocationPlanner().Plan(accountID, []*Receivable{febWater, janLateFee}, []*Payment{payment})
	require.NoError(t, err)

	require.Len(t, plan.Entries, 2)
	assert.Equal(t, janLateFee.ID, plan.Entries[0].ReceivableID)
	assert.True(t, plan.Entries[0].Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, febWater.ID, plan.Entries[1].ReceivableID)
	assert.True(t, plan.Entries[1].Amount.Equal(decimal.NewFromInt(10)))
}

func TestAllocationPlannerDrawsPaymentsOldestFirst(t *testing.T) {
	accountID := uuid.New()
	jan := statementDate(2025, time.January)

	rent := mustReceivable(t, accountID, jan, CategoryRent, 1000)

	older := mustPayment(t, accountID, 400, time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC))
	newer := mustPayment(t, accountID, 800, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC))

	plan, err := NewAllocationPlanner().Plan(accountID, []*Receivable{rent}, []*Payment{newer, older})
	require.NoError(t, err)

	require.Len(t, plan.Entries, 2)
	assert.Equal(t, older.ID, plan.Entries[0].PaymentID)
	assert.True(t, plan.Entries[0].Amount.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, newer.ID, plan.Entries[1].PaymentID)
	assert.True(t, plan.Entries[1].Amount.Equal(decimal.NewFromInt(600)))

	assert.Equal(t, []uuid.UUID{rent.ID}, plan.FullyPaidReceivables)
	assert.True(t, plan.RemainingCredit.Equal(decimal.NewFromInt(200)), "unused money stays in the pool")
}

func TestAllocationPlannerIgnoresSettledInput(t *testing.T) {
	accountID := uuid.New()
	jan := statementDate(2025, time.January)

	paid := mustReceivable(t, accountID, jan, CategoryRent, 500)
	require.NoError(t, paid.ApplyAllocation(decimal.NewFromInt(500)))

	spent := mustPayment(t, accountID, 500, time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, spent.Apply(decimal.NewFromInt(500)))

	plan, err := NewAllocationPlanner().Plan(accountID, []*Receivable{paid}, []*Payment{spent})
	require.NoError(t, err)
	assert.False(t, plan.HasAllocations())
	assert.True(t, plan.TotalAllocated.IsZero())
}

func TestAllocationPlannerDoesNotMutateInputs(t *testing.T) {
	accountID := uuid.New()
	jan := statementDate(2025, time.January)

	rent := mustReceivable(t, accountID, jan, CategoryRent, 1000)
	payment := mustPayment(t, accountID, 900, time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC))

	_, err := NewAllocationPlanner().Plan(accountID, []*Receivable{rent}, []*Payment{payment})
	require.NoError(t, err)

	assert.True(t, rent.Outstanding().Equal(decimal.NewFromInt(1000)))
	assert.True(t, payment.Available().Equal(decimal.NewFromInt(900)))
}

func TestAllocationPlannerRejectsForeignRows(t *testing.T) {
	accountID := uuid.New()
	other := uuid.New()
	jan := statementDate(2025, time.January)

	foreign := mustReceivable(t, other, jan, CategoryRent, 100)
	_, err := NewAllocationPlanner().Plan(accountID, []*Receivable{foreign}, nil)
	assert.Error(t, err)

	foreignPayment := mustPayment(t, other, 100, time.Now())
	_, err = NewAllocationPlanner().Plan(accountID, nil, []*Payment{foreignPayment})
	assert.Error(t, err)
}
