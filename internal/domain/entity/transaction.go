package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
)

// Direction tells whether money left or entered the account
type Direction string

// Directions
const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// IsValid reports whether d is one of the known directions
func (d Direction) IsValid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// ParseDirection converts a case-insensitive name into a Direction
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidDirection, s)
	}
	return d, nil
}

// Transaction is one payment extracted from a bank or wallet notification.
// Optional text fields use the empty string for "absent".
type Transaction struct {
	ID                 uint64
	Amount             decimal.Decimal
	Direction          Direction
	Description        string
	Merchant           string
	CounterpartyHandle string
	ReferenceNumber    string // deduplication key when present
	Timestamp          time.Time
	Category           string
	RawMessage         string
	IsManuallyVerified bool
	UserNote           string
	AttachmentPath     string
	CreatedAt          time.Time
}

// TransactionOption configures optional fields on NewTransaction
type TransactionOption func(*Transaction)

// WithMerchant sets the counterparty display name
func WithMerchant(merchant string) TransactionOption {
	return func(t *Transaction) { t.Merchant = strings.TrimSpace(merchant) }
}

// WithCounterpartyHandle sets the local@domain payment handle
func WithCounterpartyHandle(handle string) TransactionOption {
	return func(t *Transaction) { t.CounterpartyHandle = strings.TrimSpace(handle) }
}

// WithReferenceNumber sets the external transaction identifier
func WithReferenceNumber(ref string) TransactionOption {
	return func(t *Transaction) { t.ReferenceNumber = strings.TrimSpace(ref) }
}

// WithDescription overrides the synthesized description
func WithDescription(description string) TransactionOption {
	return func(t *Transaction) { t.Description = description }
}

// NewTransaction creates an uncategorized, unverified transaction.
// A zero or negative amount is never a valid transaction.
func NewTransaction(
	amount decimal.Decimal,
	direction Direction,
	rawMessage string,
	timestamp time.Time,
	opts ...TransactionOption,
) (*Transaction, error) {
	if err := ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}
	if !direction.IsValid() {
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidDirection, direction)
	}

	t := &Transaction{
		Amount:     amount,
		Direction:  direction,
		Timestamp:  timestamp,
		RawMessage: rawMessage,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// HasReference reports whether the transaction can be deduplicated
func (t *Transaction) HasReference() bool {
	return t.ReferenceNumber != ""
}

// IsCategorized reports whether a category has been assigned
func (t *Transaction) IsCategorized() bool {
	return t.Category != ""
}

// IsDebit returns true if money left the account
func (t *Transaction) IsDebit() bool {
	return t.Direction == DirectionDebit
}

// ApplyCategory sets an automatically resolved category.
// Manually verified records keep their category.
func (t *Transaction) ApplyCategory(category string) error {
	if t.IsManuallyVerified {
		return errs.ErrManuallyVerified
	}
	t.Category = category
	return nil
}

// MarkManuallyVerified records a human correction; it is final for automatic categorization
func (t *Transaction) MarkManuallyVerified(category string) {
	t.Category = category
	t.IsManuallyVerified = true
}

// Clone returns a copy safe to hand to another goroutine
func (t *Transaction) Clone() *Transaction {
	c := *t
	return &c
}
