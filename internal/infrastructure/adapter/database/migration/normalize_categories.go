package migration

import (
	"context"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
)

// NormalizeEmptyCategories converts the empty-string category written by 1.0.0 into NULL,
// which the pending-categorization index and queries rely on.
type NormalizeEmptyCategories struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewNormalizeEmptyCategories creates a new migration instance
func NewNormalizeEmptyCategories(db *gorm.DB, logger coreport.Logger) *NormalizeEmptyCategories {
	return &NormalizeEmptyCategories{
		db:     db,
		logger: logger,
	}
}

// Run executes the migration
func (m *NormalizeEmptyCategories) Run(ctx context.Context) error {
	m.logger.Info("Normalizing empty transaction categories", nil)

	exists, err := m.hasCategoryColumn(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	result := m.db.WithContext(ctx).Exec(`UPDATE transactions SET category = NULL WHERE category = ''`)
	if result.Error != nil {
		m.logger.Error("Failed to normalize empty categories", map[string]any{"error": result.Error.Error()})
		return result.Error
	}

	m.logger.Info("Normalized empty transaction categories", map[string]any{
		"rows": result.RowsAffected,
	})
	return nil
}

func (m *NormalizeEmptyCategories) hasCategoryColumn(ctx context.Context) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).Raw(`
		SELECT count(*)
		FROM information_schema.columns
		WHERE table_name = 'transactions' AND column_name = 'category'
	`).Scan(&count).Error
	if err != nil {
		m.logger.Error("Failed to check column existence", map[string]any{"error": err.Error()})
		return false, err
	}
	return count > 0, nil
}
