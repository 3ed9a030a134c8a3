package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	coreport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/model"
)

// TransactionRepository implements persistence.TransactionRepository using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	metrics         *database.MetricsCollector
	retry           database.RetryConfig
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, metrics *database.MetricsCollector, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		metrics:         metrics,
		retry:           database.DefaultRetryConfig(),
		errorClassifier: NewErrorClassifier(),
	}
}

// InsertIfAbsentByReference inserts with ON CONFLICT (reference_number) DO NOTHING.
// Postgres treats NULL references as distinct, so transactions without one always insert.
func (r *TransactionRepository) InsertIfAbsentByReference(ctx context.Context, transaction *entity.Transaction) (bool, uint64, error) {
	row := model.TransactionFromEntity(transaction)

	var rowsAffected int64
	err := database.RetryOnTransientError(ctx, r.retry, func() error {
		_, err := r.metrics.MeasureQuery(ctx, "transactions.insert_if_absent", func() (int64, error) {
			result := r.db.WithContext(ctx).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "reference_number"}},
					DoNothing: true,
				}).
				Create(row)
			rowsAffected = result.RowsAffected
			return result.RowsAffected, result.Error
		})
		return err
	}, r.errorClassifier.IsTransientError, r.logger)
	if err != nil {
		r.logger.Error("Failed to insert transaction", map[string]any{
			"reference_number": transaction.ReferenceNumber,
			"error":            err.Error(),
		})
		return false, 0, r.errorClassifier.ToDomain(err, errs.ErrTransactionNotFound)
	}

	if rowsAffected == 0 {
		existing, err := r.FindByReference(ctx, transaction.ReferenceNumber)
		if err != nil {
			return false, 0, fmt.Errorf("insert skipped but existing record not readable: %w", err)
		}
		r.logger.Debug("Reference number already stored, insert skipped", map[string]any{
			"reference_number": transaction.ReferenceNumber,
			"existing_id":      existing.ID,
		})
		return false, existing.ID, nil
	}

	transaction.ID = row.ID
	transaction.CreatedAt = row.CreatedAt
	return true, row.ID, nil
}

// FindByReference retrieves the record carrying the given reference number
func (r *TransactionRepository) FindByReference(ctx context.Context, referenceNumber string) (*entity.Transaction, error) {
	if referenceNumber == "" {
		return nil, errs.ErrTransactionNotFound
	}

	var row model.Transaction
	result := r.db.WithContext(ctx).
		Where("reference_number = ?", referenceNumber).
		Take(&row)
	if result.Error != nil {
		return nil, r.errorClassifier.ToDomain(result.Error, errs.ErrTransactionNotFound)
	}
	return row.ToEntity(), nil
}

// GetByID retrieves a transaction by its internal ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uint64) (*entity.Transaction, error) {
	var row model.Transaction
	result := r.db.WithContext(ctx).Take(&row, id)
	if result.Error != nil {
		return nil, r.errorClassifier.ToDomain(result.Error, errs.ErrTransactionNotFound)
	}
	return row.ToEntity(), nil
}

// Update writes back only the mutable fields
func (r *TransactionRepository) Update(ctx context.Context, transaction *entity.Transaction) error {
	row := model.TransactionFromEntity(transaction)

	var rowsAffected int64
	_, err := r.metrics.MeasureQuery(ctx, "transactions.update", func() (int64, error) {
		result := r.db.WithContext(ctx).Model(&model.Transaction{}).
			Where("id = ?", transaction.ID).
			Updates(map[string]any{
				"category":             row.Category,
				"is_manually_verified": row.IsManuallyVerified,
				"user_note":            row.UserNote,
				"attachment_path":      row.AttachmentPath,
			})
		rowsAffected = result.RowsAffected
		return result.RowsAffected, result.Error
	})
	if err != nil {
		r.logger.Error("Failed to update transaction", map[string]any{
			"transaction_id": transaction.ID,
			"error":          err.Error(),
		})
		return r.errorClassifier.ToDomain(err, errs.ErrTransactionNotFound)
	}
	if rowsAffected == 0 {
		return errs.ErrTransactionNotFound
	}
	return nil
}

// UpdateCategoryIfUnverified writes the category with a conditional UPDATE so a concurrent
// manual correction wins
func (r *TransactionRepository) UpdateCategoryIfUnverified(ctx context.Context, id uint64, category string) (bool, error) {
	var rowsAffected int64
	_, err := r.metrics.MeasureQuery(ctx, "transactions.update_category_if_unverified", func() (int64, error) {
		result := r.db.WithContext(ctx).Model(&model.Transaction{}).
			Where("id = ? AND is_manually_verified = ? AND (category IS NULL OR category = '')", id, false).
			Update("category", category)
		rowsAffected = result.RowsAffected
		return result.RowsAffected, result.Error
	})
	if err != nil {
		r.logger.Error("Failed to set transaction category", map[string]any{
			"transaction_id": id,
			"error":          err.Error(),
		})
		return false, r.errorClassifier.ToDomain(err, errs.ErrTransactionNotFound)
	}
	if rowsAffected > 0 {
		return true, nil
	}

	// distinguish a record that no longer qualifies from one that does not exist
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// ListUncategorized returns unverified records with no category, oldest first
func (r *TransactionRepository) ListUncategorized(ctx context.Context, limit int) ([]*entity.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("(category IS NULL OR category = '') AND is_manually_verified = ?", false).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Transaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrTransactionNotFound)
	}

	result := make([]*entity.Transaction, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].ToEntity())
	}
	return result, nil
}

var _ persistence.TransactionRepository = (*TransactionRepository)(nil)
