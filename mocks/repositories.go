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
	_ ports.UserRepository     = (*MockUserRepository)(nil)
	_ ports.BlogRepository     = (*MockBlogRepository)(nil)
	_ ports.CategoryRepository = (*MockCategoryRepository)(nil)
	_ ports.AuthorRepository   = (*MockAuthorRepository)(nil)
)

type cleaner interface{ Cleanup(func()) }

func bind(t mock.TestingT, m *mock.Mock) {
	m.Test(t)
	if c, ok := t.(cleaner); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
}

// ptr returns the argument at i as *T, tolerating a nil interface.
func ptr[T any](args mock.Arguments, i int) *T {
	v, _ := args.Get(i).(*T)
	return v
}

// MockUserRepository is a mock of ports.UserRepository.
type MockUserRepository struct{ mock.Mock }

// NewMockUserRepository creates a MockUserRepository bound to t.
func NewMockUserRepository(t mock.TestingT) *MockUserRepository {
	m := &MockUserRepository{}
	bind(t, &m.Mock)
	return m
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	return ptr[user.User](args, 0), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	return ptr[user.User](args, 0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	args := m.Called(ctx, u)
	return ptr[user.User](args, 0), args.Error(1)
}

func (m *MockUserRepository) SetRole(ctx context.Context, id string, role user.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockBlogRepository is a mock of ports.BlogRepository.
type MockBlogRepository struct{ mock.Mock }

// NewMockBlogRepository creates a MockBlogRepository bound to t.
func NewMockBlogRepository(t mock.TestingT) *MockBlogRepository {
	m := &MockBlogRepository{}
	bind(t, &m.Mock)
	return m
}

func (m *MockBlogRepository) List(ctx context.Context, q blog.Query) ([]blog.Blog, int64, error) {
	args := m.Called(ctx, q)
	blogs, _ := args.Get(0).([]blog.Blog)
	return blogs, args.Get(1).(int64), args.Error(2)
}

func (m *MockBlogRepository) FindByID(ctx context.Context, id string) (*blog.Blog, error) {
	args := m.Called(ctx, id)
	return ptr[blog.Blog](args, 0), args.Error(1)
}

func (m *MockBlogRepository) FindBySlug(ctx context.Context, slug string) (*blog.Blog, error) {
	args := m.Called(ctx, slug)
	return ptr[blog.Blog](args, 0), args.Error(1)
}

func (m *MockBlogRepository) SlugExists(ctx context.Context, slug, exceptID string) (bool, error) {
	args := m.Called(ctx, slug, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlogRepository) Create(ctx context.Context, b *blog.Blog) (*blog.Blog, error) {
	args := m.Called(ctx, b)
	return ptr[blog.Blog](args, 0), args.Error(1)
}

func (m *MockBlogRepository) Update(ctx context.Context, b *blog.Blog) (*blog.Blog, error) {
	args := m.Called(ctx, b)
	return ptr[blog.Blog](args, 0), args.Error(1)
}

func (m *MockBlogRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockCategoryRepository is a mock of ports.CategoryRepository.
type MockCategoryRepository struct{ mock.Mock }

// NewMockCategoryRepository creates a MockCategoryRepository bound to t.
func NewMockCategoryRepository(t mock.TestingT) *MockCategoryRepository {
	m := &MockCategoryRepository{}
	bind(t, &m.Mock)
	return m
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]category.Category)
	return cats, args.Error(1)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id string) (*category.Category, error) {
	args := m.Called(ctx, id)
	return ptr[category.Category](args, 0), args.Error(1)
}

func (m *MockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*category.Category, error) {
	args := m.Called(ctx, slug)
	return ptr[category.Category](args, 0), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *category.Category) (*category.Category, error) {
	args := m.Called(ctx, c)
	return ptr[category.Category](args, 0), args.Error(1)
}

// MockAuthorRepository is a mock of ports.AuthorRepository.
type MockAuthorRepository struct{ mock.Mock }

// NewMockAuthorRepository creates a MockAuthorRepository bound to t.
func NewMockAuthorRepository(t mock.TestingT) *MockAuthorRepository {
	m := &MockAuthorRepository{}
	bind(t, &m.Mock)
	return m
}

func (m *MockAuthorRepository) List(ctx context.Context) ([]author.Author, error) {
	args := m.Called(ctx)
	authors, _ := args.Get(0).([]author.Author)
	return authors, args.Error(1)
}

func (m *MockAuthorRepository) FindByID(ctx context.Context, id string) (*author.Author, error) {
	args := m.Called(ctx, id)
	return ptr[author.Author](args, 0), args.Error(1)
}

func (m *MockAuthorRepository) Create(ctx context.Context, a *author.Author) (*author.Author, error) {
	args := m.Called(ctx, a)
	return ptr[author.Author](args, 0), args.Error(1)
}
