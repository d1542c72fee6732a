package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain/author"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/category"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/user"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

var (
	_ ports.AuthService     = (*MockAuthService)(nil)
	_ ports.BlogService     = (*MockBlogService)(nil)
	_ ports.CategoryService = (*MockCategoryService)(nil)
	_ ports.AuthorService   = (*MockAuthorService)(nil)
)

// MockAuthService is a mock of ports.AuthService.
type MockAuthService struct{ mock.Mock }

// NewMockAuthService creates a MockAuthService bound to t.
func NewMockAuthService(t mock.TestingT) *MockAuthService {
	m := &MockAuthService{}
	bind(t, &m.Mock)
	return m
}

func (m *MockAuthService) Signup(ctx context.Context, reg user.Registration) (*ports.AuthResult, error) {
	args := m.Called(ctx, reg)
	return ptr[ports.AuthResult](args, 0), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	args := m.Called(ctx, email, password)
	return ptr[ports.AuthResult](args, 0), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*user.User, error) {
	args := m.Called(ctx, token)
	return ptr[user.User](args, 0), args.Error(1)
}

// MockBlogService is a mock of ports.BlogService.
type MockBlogService struct{ mock.Mock }

// NewMockBlogService creates a MockBlogService bound to t.
func NewMockBlogService(t mock.TestingT) *MockBlogService {
	m := &MockBlogService{}
	bind(t, &m.Mock)
	return m
}

func (m *MockBlogService) List(ctx context.Context, q blog.Query) (blog.Page, error) {
	args := m.Called(ctx, q)
	page, _ := args.Get(0).(blog.Page)
	return page, args.Error(1)
}

func (m *MockBlogService) ListByCategorySlug(ctx context.Context, slug string, q blog.Query) (*category.Category, blog.Page, error) {
	args := m.Called(ctx, slug, q)
	page, _ := args.Get(1).(blog.Page)
	return ptr[category.Category](args, 0), page, args.Error(2)
}

func (m *MockBlogService) Latest(ctx context.Context, perCategory int) ([]ports.CategoryBlogs, error) {
	args := m.Called(ctx, perCategory)
	groups, _ := args.Get(0).([]ports.CategoryBlogs)
	return groups, args.Error(1)
}

func (m *MockBlogService) Get(ctx context.Context, id string) (*blog.Blog, error) {
	args := m.Called(ctx, id)
	return ptr[blog.Blog](args, 0), args.Error(1)
}

func (m *MockBlogService) GetBySlug(ctx context.Context, slug string) (*blog.Blog, error) {
	args := m.Called(ctx, slug)
	return ptr[blog.Blog](args, 0), args.Error(1)
}

func (m *MockBlogService) Create(ctx context.Context, createdBy string, in ports.BlogInput) (*blog.Blog, error) {
	args := m.Called(ctx, createdBy, in)
	return ptr[blog.Blog](args, 0), args.Error(1)
}

func (m *MockBlogService) Update(ctx context.Context, id string, in ports.BlogInput) (*blog.Blog, error) {
	args := m.Called(ctx, id, in)
	return ptr[blog.Blog](args, 0), args.Error(1)
}

func (m *MockBlogService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockCategoryService is a mock of ports.CategoryService.
type MockCategoryService struct{ mock.Mock }

// NewMockCategoryService creates a MockCategoryService bound to t.
func NewMockCategoryService(t mock.TestingT) *MockCategoryService {
	m := &MockCategoryService{}
	bind(t, &m.Mock)
	return m
}

func (m *MockCategoryService) List(ctx context.Context) ([]category.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]category.Category)
	return cats, args.Error(1)
}

func (m *MockCategoryService) GetBySlug(ctx context.Context, slug string) (*category.Category, error) {
	args := m.Called(ctx, slug)
	return ptr[category.Category](args, 0), args.Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, c *category.Category) (*category.Category, error) {
	args := m.Called(ctx, c)
	return ptr[category.Category](args, 0), args.Error(1)
}

// MockAuthorService is a mock of ports.AuthorService.
type MockAuthorService struct{ mock.Mock }

// NewMockAuthorService creates a MockAuthorService bound to t.
func NewMockAuthorService(t mock.TestingT) *MockAuthorService {
	m := &MockAuthorService{}
	bind(t, &m.Mock)
	return m
}

func (m *MockAuthorService) List(ctx context.Context) ([]author.Author, error) {
	args := m.Called(ctx)
	authors, _ := args.Get(0).([]author.Author)
	return authors, args.Error(1)
}

func (m *MockAuthorService) Get(ctx context.Context, id string) (*author.Author, []blog.Blog, error) {
	args := m.Called(ctx, id)
	blogs, _ := args.Get(1).([]blog.Blog)
	return ptr[author.Author](args, 0), blogs, args.Error(2)
}

func (m *MockAuthorService) Create(ctx context.Context, a *author.Author) (*author.Author, error) {
	args := m.Called(ctx, a)
	return ptr[author.Author](args, 0), args.Error(1)
}
