package parser

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
)

// UnknownCounterparty names the other side when nothing better was found
const UnknownCounterparty = "Unknown"

// PassesGate is the cheap necessary condition checked before extraction:
// a direction keyword and a context word must both be present.
func PassesGate(message string) bool {
	if _, ok := ExtractDirection(message); !ok {
		return false
	}
	return HasContextWord(message)
}

// Describe builds "Paid ₹1500.00 to Swiggy" / "Received ₹200.00 from John Doe"
func Describe(direction entity.Direction, amount decimal.Decimal, merchant, handle string) string {
	verb, preposition := "Paid", "to"
	if direction == entity.DirectionCredit {
		verb, preposition = "Received", "from"
	}

	target := merchant
	if target == "" && handle != "" {
		target = HumanizeHandle(handle)
	}
	if target == "" {
		target = UnknownCounterparty
	}

	return verb + " " + entity.FormatRupees(amount) + " " + preposition + " " + target
}

// ParseMessage extracts a transaction from a notification using hand-written patterns.
// It has no side effects: the same input always yields the same output.
func ParseMessage(message string, observedAt time.Time) (*entity.Transaction, bool) {
	if !PassesGate(message) {
		return nil, false
	}

	amount, ok := ExtractAmount(message)
	if !ok || !amount.IsPositive() {
		return nil, false
	}

	direction, _ := ExtractDirection(message)
	handle, _ := ExtractIdentifier(message)
	reference, _ := ExtractReference(message)
	merchant, _ := ExtractMerchant(message)

	tx, err := entity.NewTransaction(amount, direction, message, observedAt,
		WithExtractedFields(merchant, handle, reference)...,
	)
	if err != nil {
		return nil, false
	}
	tx.Description = Describe(tx.Direction, tx.Amount, tx.Merchant, tx.CounterpartyHandle)
	return tx, true
}

// WithExtractedFields converts optional extractor output into transaction options
func WithExtractedFields(merchant, handle, reference string) []entity.TransactionOption {
	return []entity.TransactionOption{
		entity.WithMerchant(merchant),
		entity.WithCounterpartyHandle(handle),
		entity.WithReferenceNumber(reference),
	}
}

// PatternParser is the MessageParser backed by ParseMessage
type PatternParser struct{}

// NewPatternParser creates a pattern based parser
func NewPatternParser() *PatternParser {
	return &PatternParser{}
}

// Parse implements usecase.MessageParser
func (p *PatternParser) Parse(_ context.Context, message string, observedAt time.Time) (*entity.Transaction, bool) {
	return ParseMessage(message, observedAt)
}

var _ usecase.MessageParser = (*PatternParser)(nil)
