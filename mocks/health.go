package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

var (
	_ ports.HealthChecker  = (*MockHealthChecker)(nil)
	_ ports.HealthRegistry = (*MockHealthRegistry)(nil)
)

// MockHealthChecker is a mock of ports.HealthChecker.
type MockHealthChecker struct {
	mock.Mock
}

// NewMockHealthChecker creates a MockHealthChecker bound to t.
func NewMockHealthChecker(t mock.TestingT) *MockHealthChecker {
	m := &MockHealthChecker{}
	bind(t, &m.Mock)
	return m
}

func (m *MockHealthChecker) Name() string {
	return m.Called().String(0)
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockHealthRegistry is a mock of ports.HealthRegistry.
type MockHealthRegistry struct {
	mock.Mock
}

// NewMockHealthRegistry creates a MockHealthRegistry bound to t.
func NewMockHealthRegistry(t mock.TestingT) *MockHealthRegistry {
	m := &MockHealthRegistry{}
	bind(t, &m.Mock)
	return m
}

func (m *MockHealthRegistry) Register(checker ports.HealthChecker) {
	m.Called(checker)
}

func (m *MockHealthRegistry) CheckAll(ctx context.Context) map[string]error {
	args := m.Called(ctx)
	results, _ := args.Get(0).(map[string]error)
	return results
}
