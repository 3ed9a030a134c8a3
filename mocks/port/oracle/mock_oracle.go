package oracle

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/oracle"
)

// MockBackend is a testify mock for oracle.Backend, usable wherever a
// CategoryOracle or ExtractionOracle is expected
type MockBackend struct {
	mock.Mock
}

// NewMockBackend creates the mock and asserts its expectations on cleanup
func NewMockBackend(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBackend {
	m := &MockBackend{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockBackend) SuggestCategory(ctx context.Context, query oracle.CategoryQuery) (string, error) {
	args := m.Called(ctx, query)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) ExtractTransaction(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

var _ oracle.Backend = (*MockBackend)(nil)
