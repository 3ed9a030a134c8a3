package core

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
)

// MockTimeProvider is a testify mock for core.TimeProvider
type MockTimeProvider struct {
	mock.Mock
}

// NewMockTimeProvider creates a MockTimeProvider and asserts its expectations on cleanup
func NewMockTimeProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTimeProvider {
	m := &MockTimeProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTimeProvider) Now() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

func (m *MockTimeProvider) Since(t time.Time) core.Duration {
	args := m.Called(t)
	return args.Get(0).(core.Duration)
}

// WithTimeout returns the stubbed context; with no stubbed values it derives a real deadline
func (m *MockTimeProvider) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	args := m.Called(ctx, timeout)
	if len(args) == 0 {
		return context.WithTimeout(ctx, timeout.Std())
	}
	return args.Get(0).(context.Context), args.Get(1).(context.CancelFunc)
}

var _ core.TimeProvider = (*MockTimeProvider)(nil)
