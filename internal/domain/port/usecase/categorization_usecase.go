package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
)

// Categorizer picks a category name for a transaction from the given candidates.
// It always returns a name.
type Categorizer interface {
	Categorize(ctx context.Context, transaction *entity.Transaction, candidates []string) string
}

// FeedbackUseCase records human category corrections
type FeedbackUseCase interface {
	RecordCorrection(ctx context.Context, transactionID uint64, category string) (*entity.Transaction, error)
}

// RecategorizeUseCase completes categorization for persisted records that have none
type RecategorizeUseCase interface {
	ResumePending(ctx context.Context, limit int) (int, error)
}

// CategoryUseCase manages the user's category list
type CategoryUseCase interface {
	AddCategory(ctx context.Context, name, icon, color string, monthlyBudget *decimal.Decimal) (*entity.Category, error)
	SetActive(ctx context.Context, id uint64, active bool) (*entity.Category, error)
}
