package migration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/memory"
	timeadapter "github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/time"
	coremocks "github.com/amirhossein-jamali/upi-tracker/mocks/port/core"
	persistencemocks "github.com/amirhossein-jamali/upi-tracker/mocks/port/persistence"
)

func TestSeedDefaultCategories_Idempotent(t *testing.T) {
	store := memory.NewStore(timeadapter.NewFixedTimeProvider(time.Now()))
	logger := coremocks.NewMockLogger(t).Quiet()
	ctx := context.Background()

	require.NoError(t, SeedDefaultCategories(ctx, store, logger))
	require.NoError(t, SeedDefaultCategories(ctx, store, logger))

	categories, err := store.ListActiveCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(entity.DefaultCategories()))
	assert.Contains(t, entity.CategoryNames(categories), entity.DefaultCategory)
}

func TestSeedDefaultCategories_ToleratesConcurrentSeeder(t *testing.T) {
	repo := persistencemocks.NewMockCategoryRepository(t)
	repo.On("FindByName", mock.Anything, mock.Anything).Return(nil, errs.ErrCategoryNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(errs.ErrConstraintViolation)

	err := SeedDefaultCategories(context.Background(), repo, coremocks.NewMockLogger(t))
	assert.NoError(t, err)
}

func TestSeedDefaultCategories_PropagatesLookupFailure(t *testing.T) {
	repo := persistencemocks.NewMockCategoryRepository(t)
	repo.On("FindByName", mock.Anything, mock.Anything).Return(nil, errs.ErrDatabaseConnection).Once()

	err := SeedDefaultCategories(context.Background(), repo, coremocks.NewMockLogger(t))
	assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
}
