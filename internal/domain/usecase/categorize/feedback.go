package categorize

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
)

// FeedbackRecorder stores human category corrections. Corrections are final for
// automatic categorization and are kept as-is for offline analysis; nothing is learned online.
type FeedbackRecorder struct {
	transactionRepo persistence.TransactionRepository
	categoryRepo    persistence.CategoryRepository
	logger          core.Logger
}

// NewFeedbackRecorder creates a new feedback recorder
func NewFeedbackRecorder(
	transactionRepo persistence.TransactionRepository,
	categoryRepo persistence.CategoryRepository,
	logger core.Logger,
) *FeedbackRecorder {
	return &FeedbackRecorder{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		logger:          logger,
	}
}

// RecordCorrection sets the category chosen by a human and marks the record verified
//
// Possible errors:
// - ErrCategoryNotFound: If category is neither an active category nor the default bucket
// - ErrTransactionNotFound: If no transaction has that ID
func (r *FeedbackRecorder) RecordCorrection(ctx context.Context, transactionID uint64, category string) (*entity.Transaction, error) {
	name, err := r.canonicalName(ctx, category)
	if err != nil {
		return nil, err
	}

	tx, err := r.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	previous := tx.Category
	tx.MarkManuallyVerified(name)
	if err := r.transactionRepo.Update(ctx, tx); err != nil {
		return nil, errs.NewTransactionError("record correction", tx.ID, tx.ReferenceNumber, "update failed", err)
	}

	r.logger.Info("Category corrected by user", map[string]any{
		"transaction_id":    tx.ID,
		"previous_category": previous,
		"category":          name,
	})
	return tx, nil
}

func (r *FeedbackRecorder) canonicalName(ctx context.Context, category string) (string, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, entity.DefaultCategory) {
		return entity.DefaultCategory, nil
	}

	active, err := r.categoryRepo.ListActiveCategories(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range active {
		if c.MatchesName(category) {
			return c.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not an active category", errs.ErrCategoryNotFound, category)
}

var _ usecase.FeedbackUseCase = (*FeedbackRecorder)(nil)
