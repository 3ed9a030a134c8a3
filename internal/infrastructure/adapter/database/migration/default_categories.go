package migration

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	coreport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
)

// SeedDefaultCategories creates any default category missing from the store.
// Existing categories, including deactivated ones, are left alone.
func SeedDefaultCategories(ctx context.Context, repo persistence.CategoryRepository, logger coreport.Logger) error {
	created := 0
	for _, category := range entity.DefaultCategories() {
		_, err := repo.FindByName(ctx, category.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, errs.ErrCategoryNotFound) {
			return err
		}

		if err := repo.Create(ctx, category); err != nil {
			// another instance seeded it first
			if errors.Is(err, errs.ErrConstraintViolation) {
				continue
			}
			return err
		}
		created++
	}

	if created > 0 {
		logger.Info("Seeded default categories", map[string]any{
			"created": created,
		})
	}
	return nil
}
