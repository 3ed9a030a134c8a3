package categorize

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
)

// CategoryManager adds categories and switches them on or off.
// Deactivated categories stop being candidates on the next categorization.
type CategoryManager struct {
	categoryRepo persistence.CategoryRepository
	logger       core.Logger
}

// NewCategoryManager creates a new category manager
func NewCategoryManager(categoryRepo persistence.CategoryRepository, logger core.Logger) *CategoryManager {
	return &CategoryManager{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// AddCategory stores a new active category
//
// Possible errors:
// - ErrInvalidRequest: If the name is blank
// - ErrInvalidAmount: If the budget is negative
// - ErrConstraintViolation: If the name is taken, ignoring case
func (m *CategoryManager) AddCategory(ctx context.Context, name, icon, color string, monthlyBudget *decimal.Decimal) (*entity.Category, error) {
	category, err := entity.NewCategory(name, icon, color, monthlyBudget)
	if err != nil {
		return nil, err
	}
	if err := m.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// SetActive switches a category on or off. The default bucket cannot be switched off.
//
// Possible errors:
// - ErrCategoryNotFound: If no category has that ID
// - ErrInvalidRequest: If deactivating the default category
func (m *CategoryManager) SetActive(ctx context.Context, id uint64, active bool) (*entity.Category, error) {
	category, err := m.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !active && category.MatchesName(entity.DefaultCategory) {
		return nil, fmt.Errorf("%w: %q cannot be deactivated", errs.ErrInvalidRequest, category.Name)
	}
	if category.IsActive == active {
		return category, nil
	}

	if err := m.categoryRepo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	category.IsActive = active

	m.logger.Info("Category state changed", map[string]any{
		"category_id": id,
		"name":        category.Name,
		"active":      active,
	})
	return category, nil
}

var _ usecase.CategoryUseCase = (*CategoryManager)(nil)
