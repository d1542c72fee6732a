package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

var (
	_ ports.MediaClient    = (*MockMediaClient)(nil)
	_ ports.TokenIssuer    = (*MockTokenIssuer)(nil)
	_ ports.PasswordHasher = (*MockPasswordHasher)(nil)
)

// MockMediaClient is a mock of ports.MediaClient.
type MockMediaClient struct{ mock.Mock }

// NewMockMediaClient creates a MockMediaClient bound to t.
func NewMockMediaClient(t mock.TestingT) *MockMediaClient {
	m := &MockMediaClient{}
	bind(t, &m.Mock)
	return m
}

func (m *MockMediaClient) Upload(ctx context.Context, data []byte, opts ports.UploadOptions) (*ports.UploadResult, error) {
	args := m.Called(ctx, data, opts)
	return ptr[ports.UploadResult](args, 0), args.Error(1)
}

func (m *MockMediaClient) Delete(ctx context.Context, publicID string) error {
	return m.Called(ctx, publicID).Error(0)
}

func (m *MockMediaClient) PublicIDFromURL(url string) string {
	return m.Called(url).String(0)
}

// MockTokenIssuer is a mock of ports.TokenIssuer.
type MockTokenIssuer struct{ mock.Mock }

// NewMockTokenIssuer creates a MockTokenIssuer bound to t.
func NewMockTokenIssuer(t mock.TestingT) *MockTokenIssuer {
	m := &MockTokenIssuer{}
	bind(t, &m.Mock)
	return m
}

func (m *MockTokenIssuer) Sign(subject string) (string, error) {
	args := m.Called(subject)
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

// MockPasswordHasher is a mock of ports.PasswordHasher.
type MockPasswordHasher struct{ mock.Mock }

// NewMockPasswordHasher creates a MockPasswordHasher bound to t.
func NewMockPasswordHasher(t mock.TestingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	bind(t, &m.Mock)
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Compare(hash, password string) error {
	return m.Called(hash, password).Error(0)
}
