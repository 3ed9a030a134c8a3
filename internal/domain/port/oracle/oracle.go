package oracle

import (
	"context"

	"github.com/shopspring/decimal"
)

// CategoryQuery is what the semantic oracle sees when asked for a category
type CategoryQuery struct {
	Description string
	Merchant    string
	Amount      decimal.Decimal
	Candidates  []string
}

// CategoryOracle maps a transaction summary to free text naming a category.
// The answer is not trusted; callers resolve it against their own candidate list.
type CategoryOracle interface {
	SuggestCategory(ctx context.Context, query CategoryQuery) (string, error)
}

// ExtractionOracle turns a raw notification into a JSON object describing the payment
type ExtractionOracle interface {
	ExtractTransaction(ctx context.Context, message string) (string, error)
}

// Backend is a model able to serve both oracle operations
type Backend interface {
	CategoryOracle
	ExtractionOracle
}

// Loader builds a Backend. It may be slow and may fail.
type Loader func(ctx context.Context) (Backend, error)
