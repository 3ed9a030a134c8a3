package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
)

// MockTransactionRepository is a testify mock for persistence.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

// NewMockTransactionRepository creates the mock and asserts its expectations on cleanup
func NewMockTransactionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTransactionRepository) InsertIfAbsentByReference(ctx context.Context, transaction *entity.Transaction) (bool, uint64, error) {
	args := m.Called(ctx, transaction)
	return args.Bool(0), args.Get(1).(uint64), args.Error(2)
}

func (m *MockTransactionRepository) FindByReference(ctx context.Context, referenceNumber string) (*entity.Transaction, error) {
	args := m.Called(ctx, referenceNumber)
	if tx := args.Get(0); tx != nil {
		return tx.(*entity.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uint64) (*entity.Transaction, error) {
	args := m.Called(ctx, id)
	if tx := args.Get(0); tx != nil {
		return tx.(*entity.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, transaction *entity.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateCategoryIfUnverified(ctx context.Context, id uint64, category string) (bool, error) {
	args := m.Called(ctx, id, category)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) ListUncategorized(ctx context.Context, limit int) ([]*entity.Transaction, error) {
	args := m.Called(ctx, limit)
	if txs := args.Get(0); txs != nil {
		return txs.([]*entity.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

var _ persistence.TransactionRepository = (*MockTransactionRepository)(nil)
