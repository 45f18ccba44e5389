package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateGuardPayments(t *testing.T) {
	accountID := uuid.New()
	received := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)

	existing, err := NewPayment(accountID, decimal.NewFromInt(900), "Jane Doe", received, received)
	require.NoError(t, err)

	guard := NewDuplicateGuard(PaymentDuplicateKey)

	t.Run("same account, amount and date trips the guard", func(t *testing.T) {
		candidate, err := NewPayment(accountID, decimal.NewFromInt(900), "John Doe", received, received)
		require.NoError(t, err)

		matches := guard.FindMatches([]*Payment{existing}, candidate)
		assert.Len(t, matches, 1)
		assert.ErrorIs(t, guard.Check([]*Payment{existing}, candidate), shared.ErrDuplicateDetected)
	})

	t.Run("different amount passes", func(t *testing.T) {
		candidate, err := NewPayment(accountID, decimal.NewFromInt(901), "Jane Doe", received, received)
		require.NoError(t, err)
		assert.NoError(t, guard.Check([]*Payment{existing}, candidate))
	})

	t.Run("different received date passes", func(t *testing.T) {
		candidate, err := NewPayment(accountID, decimal.NewFromInt(900), "Jane Doe", received, received.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.NoError(t, guard.Check([]*Payment{existing}, candidate))
	})

	t.Run("different account passes", func(t *testing.T) {
		candidate, err := NewPayment(uuid.New(), decimal.NewFromInt(900), "Jane Doe", received, received)
		require.NoError(t, err)
		assert.NoError(t, guard.Check([]*Payment{existing}, candidate))
	})
}

func TestDuplicateGuardSettings(t *testing.T) {
	effective := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	existing := mustSetting(t, effective, 1000, 20)
	guard := NewDuplicateGuard(SettingDuplicateKey)

	same := mustSetting(t, effective, 1200, 25)
	assert.ErrorIs(t, guard.Check([]*InvoiceSetting{existing}, same), shared.ErrDuplicateDetected)

	later := mustSetting(t, effective.AddDate(1, 0, 0), 1200, 25)
	assert.NoError(t, guard.Check([]*InvoiceSetting{existing}, later))
}

func TestOverrideToken(t *testing.T) {
	token := NewOverrideToken("some-key", time.Minute)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, "some-key", token.Key)

	assert.False(t, token.IsExpired(time.Now()))
	assert.True(t, token.IsExpired(time.Now().Add(2*time.Minute)))
}
