package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/author"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/category"
	"github.com/jsamuelsen11/blog-platform-api/mocks"
)

func TestCategoryService_CreateDerivesSlug(t *testing.T) {
	t.Parallel()
	repo := mocks.NewMockCategoryRepository(t)
	svc := NewCategoryService(repo, discardLogger())

	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *category.Category) bool {
		return c.Name == "Cloud Native" && c.Slug == "cloud-native"
	})).Return(&category.Category{ID: "c1", Name: "Cloud Native", Slug: "cloud-native"}, nil)

	got, err := svc.Create(context.Background(), &category.Category{Name: " Cloud Native "})
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
}

func TestCategoryService_CreateInvalid(t *testing.T) {
	t.Parallel()
	svc := NewCategoryService(mocks.NewMockCategoryRepository(t), nil)

	_, err := svc.Create(context.Background(), &category.Category{Name: "!!!"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCategoryService_CreateDuplicate(t *testing.T) {
	t.Parallel()
	repo := mocks.NewMockCategoryRepository(t)
	svc := NewCategoryService(repo, discardLogger())

	repo.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	_, err := svc.Create(context.Background(), &category.Category{Name: "Go"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCategoryService_ListAndGet(t *testing.T) {
	t.Parallel()
	repo := mocks.NewMockCategoryRepository(t)
	svc := NewCategoryService(repo, discardLogger())
	ctx := context.Background()

	repo.On("List", ctx).Return([]category.Category{{ID: "c1"}}, nil)
	repo.On("FindBySlug", ctx, "go").Return(&category.Category{ID: "c1", Slug: "go"}, nil)

	cats, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	c, err := svc.GetBySlug(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
}

func TestAuthorService_GetListsLivePosts(t *testing.T) {
	t.Parallel()
	authors := mocks.NewMockAuthorRepository(t)
	blogs := mocks.NewMockBlogRepository(t)
	svc := NewAuthorService(authors, blogs, discardLogger())
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	authors.On("FindByID", ctx, "a1").Return(&author.Author{ID: "a1", Name: "Ada"}, nil)
	blogs.On("List", ctx, blog.Query{View: blog.ViewPublished, AuthorID: "a1", Now: now}).
		Return([]blog.Blog{{ID: "b1"}}, int64(1), nil)

	a, posts, err := svc.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", a.Name)
	assert.Len(t, posts, 1)
}

func TestAuthorService_GetUnknown(t *testing.T) {
	t.Parallel()
	authors := mocks.NewMockAuthorRepository(t)
	svc := NewAuthorService(authors, mocks.NewMockBlogRepository(t), discardLogger())

	authors.On("FindByID", mock.Anything, "x").Return(nil, domain.ErrNotFound)

	_, _, err := svc.Get(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuthorService_Create(t *testing.T) {
	t.Parallel()
	authors := mocks.NewMockAuthorRepository(t)
	svc := NewAuthorService(authors, mocks.NewMockBlogRepository(t), discardLogger())

	_, err := svc.Create(context.Background(), &author.Author{Name: "   "})
	require.ErrorIs(t, err, domain.ErrValidation)

	authors.On("Create", mock.Anything, mock.MatchedBy(func(a *author.Author) bool { return a.Name == "Ada" })).
		Return(&author.Author{ID: "a1", Name: "Ada"}, nil)
	got, err := svc.Create(context.Background(), &author.Author{Name: " Ada "})
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)
}
