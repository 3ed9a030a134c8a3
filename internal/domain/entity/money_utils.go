package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// CurrencySymbol prefixes formatted amounts
const CurrencySymbol = "₹"

// ParseAmount converts a numeric token such as "1,500.00" into a decimal.
// Thousands separators are stripped; more than two decimal places is rejected.
func ParseAmount(token string) (decimal.Decimal, error) {
	token = strings.ReplaceAll(strings.TrimSpace(token), ",", "")
	if token == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	if dot := strings.IndexByte(token, '.'); dot >= 0 && len(token)-dot-1 > MaxDecimalPlaces {
		return decimal.Zero, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
	}

	amount, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}
	return amount, nil
}

// ValidatePositiveAmount rejects zero and negative amounts
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", errs.ErrInvalidAmount, amount.String())
	}
	return nil
}

// FormatRupees renders an amount as "₹1500.00"
func FormatRupees(amount decimal.Decimal) string {
	return CurrencySymbol + amount.StringFixed(MaxDecimalPlaces)
}
