package categorize

import (
	"context"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
)

// LoadCandidates returns active category names. A lookup failure is logged and yields
// no candidates, which makes the engine fall back to its own table.
func LoadCandidates(ctx context.Context, categoryRepo persistence.CategoryRepository, logger core.Logger) []string {
	categories, err := categoryRepo.ListActiveCategories(ctx)
	if err != nil {
		logger.Warn("Failed to load active categories, using built-in table", map[string]any{
			"error": err.Error(),
		})
		return nil
	}
	return entity.CategoryNames(categories)
}
