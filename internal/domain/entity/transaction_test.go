package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
)

func TestNewTransaction(t *testing.T) {
	fixedTime := time.Date(2023, 12, 15, 10, 30, 0, 0, time.UTC)

	t.Run("Valid transaction creation", func(t *testing.T) {
		tx, err := NewTransaction(
			decimal.RequireFromString("1500.00"),
			DirectionDebit,
			"raw text",
			fixedTime,
			WithMerchant(" Swiggy "),
			WithCounterpartyHandle("swiggy@paytm"),
			WithReferenceNumber("334512345678"),
		)

		require.NoError(t, err)
		assert.True(t, tx.Amount.Equal(decimal.NewFromInt(1500)))
		assert.Equal(t, DirectionDebit, tx.Direction)
		assert.Equal(t, "Swiggy", tx.Merchant)
		assert.Equal(t, "swiggy@paytm", tx.CounterpartyHandle)
		assert.Equal(t, "334512345678", tx.ReferenceNumber)
		assert.Equal(t, fixedTime, tx.Timestamp)
		assert.Equal(t, "raw text", tx.RawMessage)
		assert.Empty(t, tx.Category)
		assert.False(t, tx.IsManuallyVerified)
		assert.True(t, tx.HasReference())
		assert.True(t, tx.IsDebit())
	})

	t.Run("Non-positive amounts are rejected", func(t *testing.T) {
		testCases := []struct {
			name   string
			amount decimal.Decimal
		}{
			{"zero", decimal.Zero},
			{"negative", decimal.RequireFromString("-10.50")},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				tx, err := NewTransaction(tc.amount, DirectionCredit, "raw", fixedTime)
				assert.ErrorIs(t, err, errs.ErrInvalidAmount)
				assert.Nil(t, tx)
			})
		}
	})

	t.Run("Invalid direction", func(t *testing.T) {
		tx, err := NewTransaction(decimal.NewFromInt(1), Direction("REFUND"), "raw", fixedTime)
		assert.ErrorIs(t, err, errs.ErrInvalidDirection)
		assert.Nil(t, tx)
	})
}

func TestParseDirection(t *testing.T) {
	testCases := []struct {
		input    string
		expected Direction
		wantErr  bool
	}{
		{"DEBIT", DirectionDebit, false},
		{"credit", DirectionCredit, false},
		{" Debit ", DirectionDebit, false},
		{"transfer", "", true},
		{"", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			d, err := ParseDirection(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, errs.ErrInvalidDirection)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
		})
	}
}

func TestTransactionCategoryLifecycle(t *testing.T) {
	tx, err := NewTransaction(decimal.NewFromInt(250), DirectionDebit, "raw", time.Now())
	require.NoError(t, err)

	require.NoError(t, tx.ApplyCategory("Shopping"))
	assert.Equal(t, "Shopping", tx.Category)
	assert.True(t, tx.IsCategorized())

	tx.MarkManuallyVerified("Groceries")
	assert.Equal(t, "Groceries", tx.Category)
	assert.True(t, tx.IsManuallyVerified)

	err = tx.ApplyCategory("Shopping")
	assert.ErrorIs(t, err, errs.ErrManuallyVerified)
	assert.Equal(t, "Groceries", tx.Category)
}

func TestTransactionClone(t *testing.T) {
	tx, err := NewTransaction(decimal.NewFromInt(99), DirectionCredit, "raw", time.Now())
	require.NoError(t, err)

	c := tx.Clone()
	c.Category = "Investment"

	assert.Empty(t, tx.Category)
}
