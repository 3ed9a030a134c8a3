package persistence

import (
	"context"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
)

// CategoryRepository exposes the category list consumed as classification candidates
type CategoryRepository interface {
	// ListActiveCategories returns active categories ordered by name
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	ListActiveCategories(ctx context.Context) ([]*entity.Category, error)

	// FindByName looks a category up ignoring case, active or not
	//
	// Possible errors:
	// - ErrCategoryNotFound: If no category has that name
	// - ErrDatabaseConnection: If database connection fails
	FindByName(ctx context.Context, name string) (*entity.Category, error)

	// FindByID retrieves a category by its internal ID, active or not
	//
	// Possible errors:
	// - ErrCategoryNotFound: If no category has that ID
	// - ErrDatabaseConnection: If database connection fails
	FindByID(ctx context.Context, id uint64) (*entity.Category, error)

	// SetActive toggles whether the category is offered as a candidate.
	// Records already labelled with it keep the label.
	//
	// Possible errors:
	// - ErrCategoryNotFound: If no category has that ID
	// - ErrDatabaseConnection: If database connection fails
	SetActive(ctx context.Context, id uint64, active bool) error

	// Create stores a new category
	//
	// Possible errors:
	// - ErrConstraintViolation: If a category with the same name (ignoring case) exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, category *entity.Category) error
}
