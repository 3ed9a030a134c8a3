package categorize

import (
	"context"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
)

// Recategorizer finishes categorization for records persisted without a category.
// Running it again is harmless: categorized and verified records are never listed.
type Recategorizer struct {
	engine          *Engine
	transactionRepo persistence.TransactionRepository
	categoryRepo    persistence.CategoryRepository
	logger          core.Logger
}

// NewRecategorizer creates a new recategorizer
func NewRecategorizer(
	engine *Engine,
	transactionRepo persistence.TransactionRepository,
	categoryRepo persistence.CategoryRepository,
	logger core.Logger,
) *Recategorizer {
	return &Recategorizer{
		engine:          engine,
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		logger:          logger,
	}
}

// ResumePending categorizes up to limit pending records and returns how many were updated
func (r *Recategorizer) ResumePending(ctx context.Context, limit int) (int, error) {
	pending, err := r.transactionRepo.ListUncategorized(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	candidates := LoadCandidates(ctx, r.categoryRepo, r.logger)

	updated := 0
	for _, tx := range pending {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if err := r.engine.Assign(ctx, tx, candidates); err != nil {
			continue
		}
		// tx is a snapshot; a correction may have been stored while the oracle was thinking
		applied, err := r.transactionRepo.UpdateCategoryIfUnverified(ctx, tx.ID, tx.Category)
		if err != nil {
			return updated, err
		}
		if !applied {
			r.logger.Debug("Record changed during categorization, keeping stored category", map[string]any{
				"transaction_id": tx.ID,
			})
			continue
		}
		updated++
	}

	r.logger.Info("Resumed pending categorization", map[string]any{
		"pending": len(pending),
		"updated": updated,
	})
	return updated, nil
}

var _ usecase.RecategorizeUseCase = (*Recategorizer)(nil)
