package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
)

// MockCategoryRepository is a testify mock for persistence.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

// NewMockCategoryRepository creates the mock and asserts its expectations on cleanup
func NewMockCategoryRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCategoryRepository {
	m := &MockCategoryRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCategoryRepository) ListActiveCategories(ctx context.Context) ([]*entity.Category, error) {
	args := m.Called(ctx)
	if cs := args.Get(0); cs != nil {
		return cs.([]*entity.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	args := m.Called(ctx, name)
	if c := args.Get(0); c != nil {
		return c.(*entity.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uint64) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*entity.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) SetActive(ctx context.Context, id uint64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

var _ persistence.CategoryRepository = (*MockCategoryRepository)(nil)
