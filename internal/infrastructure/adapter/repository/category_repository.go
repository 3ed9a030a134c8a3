package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	coreport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/model"
)

// CategoryRepository implements persistence.CategoryRepository using GORM
type CategoryRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewCategoryRepository creates a new CategoryRepository instance
func NewCategoryRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// ListActiveCategories returns active categories ordered by name
func (r *CategoryRepository) ListActiveCategories(ctx context.Context) ([]*entity.Category, error) {
	var rows []model.Category
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&rows).Error; err != nil {
		r.logger.Error("Failed to list categories", map[string]any{"error": err.Error()})
		return nil, r.errorClassifier.ToDomain(err, errs.ErrCategoryNotFound)
	}

	result := make([]*entity.Category, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].ToEntity())
	}
	return result, nil
}

// FindByName looks a category up ignoring case
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	var row model.Category
	result := r.db.WithContext(ctx).Where("lower(name) = lower(?)", name).Take(&row)
	if result.Error != nil {
		return nil, r.errorClassifier.ToDomain(result.Error, errs.ErrCategoryNotFound)
	}
	return row.ToEntity(), nil
}

// FindByID retrieves a category by its internal ID
func (r *CategoryRepository) FindByID(ctx context.Context, id uint64) (*entity.Category, error) {
	var row model.Category
	if err := r.db.WithContext(ctx).Take(&row, id).Error; err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrCategoryNotFound)
	}
	return row.ToEntity(), nil
}

// SetActive toggles the active flag
func (r *CategoryRepository) SetActive(ctx context.Context, id uint64, active bool) error {
	result := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		r.logger.Error("Failed to change category state", map[string]any{
			"category_id": id,
			"error":       result.Error.Error(),
		})
		return r.errorClassifier.ToDomain(result.Error, errs.ErrCategoryNotFound)
	}
	if result.RowsAffected == 0 {
		return errs.ErrCategoryNotFound
	}
	return nil
}

// Create stores a new category
func (r *CategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	row := model.CategoryFromEntity(category)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = r.timeProvider.Now()
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return r.errorClassifier.ToDomain(err, errs.ErrCategoryNotFound)
	}

	category.ID = row.ID
	category.CreatedAt = row.CreatedAt
	r.logger.Info("Category created", map[string]any{
		"category_id": row.ID,
		"name":        row.Name,
	})
	return nil
}

var _ persistence.CategoryRepository = (*CategoryRepository)(nil)
