package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
)

func TestParseAmount(t *testing.T) {
	t.Run("Valid amounts", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected string
		}{
			{"1,500.00", "1500"},
			{"1,00,000", "100000"},
			{"250", "250"},
			{"99.9", "99.9"},
			{"0.01", "0.01"},
			{" 12.50 ", "12.5"},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				amount, err := ParseAmount(tc.input)
				require.NoError(t, err)
				assert.True(t, amount.Equal(decimal.RequireFromString(tc.expected)), "got %s", amount)
			})
		}
	})

	t.Run("Invalid amounts", func(t *testing.T) {
		testCases := []struct {
			input       string
			description string
		}{
			{"", "Empty string"},
			{"   ", "Whitespace only"},
			{"1.234", "Too many decimal places"},
			{"abc", "Non-numeric"},
			{"1.00.00", "Multiple decimal points"},
		}

		for _, tc := range testCases {
			t.Run(tc.description, func(t *testing.T) {
				_, err := ParseAmount(tc.input)
				assert.ErrorIs(t, err, errs.ErrInvalidAmount)
			})
		}
	})
}

func TestValidatePositiveAmount(t *testing.T) {
	assert.NoError(t, ValidatePositiveAmount(decimal.RequireFromString("0.01")))
	assert.ErrorIs(t, ValidatePositiveAmount(decimal.Zero), errs.ErrInvalidAmount)
	assert.ErrorIs(t, ValidatePositiveAmount(decimal.NewFromInt(-5)), errs.ErrInvalidAmount)
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "₹1500.00", FormatRupees(decimal.NewFromInt(1500)))
	assert.Equal(t, "₹99.90", FormatRupees(decimal.RequireFromString("99.9")))
	assert.Equal(t, "₹0.05", FormatRupees(decimal.RequireFromString("0.05")))
}
