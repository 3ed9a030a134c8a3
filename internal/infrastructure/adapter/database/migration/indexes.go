package migration

import (
	"context"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
)

// IndexManager manages PostgreSQL-specific indexes that struct tags cannot declare
type IndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewIndexManager creates a new index manager
func NewIndexManager(db *gorm.DB, logger coreport.Logger) *IndexManager {
	return &IndexManager{
		db:     db,
		logger: logger,
	}
}

var indexStatements = []struct {
	name string
	sql  string
}{
	{
		// ON CONFLICT (reference_number) needs a non-partial unique index; NULLs stay distinct
		name: "idx_transactions_reference_number",
		sql:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_reference_number ON transactions (reference_number)`,
	},
	{
		name: "idx_categories_lower_name",
		sql:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_lower_name ON categories (lower(name))`,
	},
	{
		name: "idx_transactions_pending_category",
		sql: `CREATE INDEX IF NOT EXISTS idx_transactions_pending_category
			ON transactions (id)
			WHERE category IS NULL AND is_manually_verified = false`,
	},
	{
		name: "idx_transactions_occurred_at_brin",
		sql: `CREATE INDEX IF NOT EXISTS idx_transactions_occurred_at_brin
			ON transactions USING BRIN (occurred_at)
			WITH (pages_per_range = 32)`,
	},
	{
		name: "idx_transactions_category",
		sql:  `CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions (category)`,
	},
}

// CreateIndexes creates all indexes; it is idempotent
func (m *IndexManager) CreateIndexes(ctx context.Context) error {
	m.logger.Info("Creating PostgreSQL indexes", nil)

	for _, stmt := range indexStatements {
		if err := m.db.WithContext(ctx).Exec(stmt.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": stmt.name,
				"error": err.Error(),
			})
			return err
		}
	}

	m.logger.Info("PostgreSQL indexes created successfully", nil)
	return nil
}

// ApplyPerformanceTweaks applies non-critical storage settings; failures are logged only
func (m *IndexManager) ApplyPerformanceTweaks(ctx context.Context) {
	// transactions are append-mostly; updates only touch category columns
	if err := m.db.WithContext(ctx).Exec(`ALTER TABLE transactions SET (fillfactor = 90)`).Error; err != nil {
		m.logger.Warn("Failed to set fillfactor for transactions table", map[string]any{
			"error": err.Error(),
		})
	}
}
