package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/dto"
	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/author"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/category"
	"github.com/jsamuelsen11/blog-platform-api/mocks"
)

// --- Categories ---

func TestListCategories(t *testing.T) {
	t.Parallel()

	svc := mocks.NewMockCategoryService(t)
	svc.On("List", mock.Anything).Return([]category.Category{
		{ID: "c1", Name: "Travel", Slug: "travel", CreatedAt: testTime},
		{ID: "c2", Name: "Food", Slug: "food", CreatedAt: testTime},
	}, nil)
	h := handlers.NewCategoryHandler(svc)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.CategoryListResponse](t, rec)
	assert.Equal(t, 2, resp.Count)
}

func TestGetCategoryBySlug(t *testing.T) {
	t.Parallel()

	svc := mocks.NewMockCategoryService(t)
	svc.On("GetBySlug", mock.Anything, "travel").
		Return(&category.Category{ID: "c1", Name: "Travel", Slug: "travel"}, nil)
	svc.On("GetBySlug", mock.Anything, "nope").
		Return(nil, fmt.Errorf("category: %w", domain.ErrNotFound))
	h := handlers.NewCategoryHandler(svc)

	rec := httptest.NewRecorder()
	h.GetBySlug(rec, withChiParams(httptest.NewRequest(http.MethodGet, "/api/categories/travel", nil), map[string]string{"slug": "travel"}))
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, "Travel", decodeJSON[dto.CategoryEnvelope](t, rec).Category.Name)

	rec = httptest.NewRecorder()
	h.GetBySlug(rec, withChiParams(httptest.NewRequest(http.MethodGet, "/api/categories/nope", nil), map[string]string{"slug": "nope"}))
	requireStatus(t, rec, http.StatusNotFound)
}

func TestCreateCategory(t *testing.T) {
	t.Parallel()

	svc := mocks.NewMockCategoryService(t)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(c *category.Category) bool {
		return c.Name == "Travel"
	})).Return(&category.Category{ID: "c1", Name: "Travel", Slug: "travel"}, nil)
	h := handlers.NewCategoryHandler(svc)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/categories", jsonBody(t, dto.CreateCategoryRequest{Name: "Travel"})))

	requireStatus(t, rec, http.StatusCreated)
	assert.Equal(t, "travel", decodeJSON[dto.CategoryEnvelope](t, rec).Category.Slug)
}

func TestCreateCategory_Duplicate(t *testing.T) {
	t.Parallel()

	svc := mocks.NewMockCategoryService(t)
	svc.On("Create", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: category already exists", domain.ErrConflict))
	h := handlers.NewCategoryHandler(svc)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/categories", jsonBody(t, dto.CreateCategoryRequest{Name: "Travel"})))

	requireStatus(t, rec, http.StatusConflict)
}

// --- Authors ---

func TestListAuthors(t *testing.T) {
	t.Parallel()

	svc := mocks.NewMockAuthorService(t)
	svc.On("List", mock.Anything).Return([]author.Author{{ID: "a1", Name: "Grace"}}, nil)
	h := handlers.NewAuthorHandler(svc)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/authors", nil))

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.AuthorListResponse](t, rec)
	assert.Equal(t, 1, resp.Count)
}

func TestGetAuthor_IncludesPosts(t *testing.T) {
	t.Parallel()

	svc := mocks.NewMockAuthorService(t)
	svc.On("Get", mock.Anything, "a1").
		Return(&author.Author{ID: "a1", Name: "Grace"}, []blog.Blog{validBlog()}, nil)
	svc.On("Get", mock.Anything, "a2").
		Return(&author.Author{ID: "a2", Name: "Linus"}, nil, nil)
	h := handlers.NewAuthorHandler(svc)

	rec := httptest.NewRecorder()
	h.Get(rec, withChiParams(httptest.NewRequest(http.MethodGet, "/api/authors/a1", nil), map[string]string{"id": "a1"}))
	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.AuthorEnvelope](t, rec)
	require.NotNil(t, resp.Blogs)
	assert.Len(t, *resp.Blogs, 1)

	rec = httptest.NewRecorder()
	h.Get(rec, withChiParams(httptest.NewRequest(http.MethodGet, "/api/authors/a2", nil), map[string]string{"id": "a2"}))
	requireStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), `"blogs":[]`)
}

func TestCreateAuthor_MissingName(t *testing.T) {
	t.Parallel()

	h := handlers.NewAuthorHandler(mocks.NewMockAuthorService(t))

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/authors", jsonBody(t, dto.CreateAuthorRequest{Bio: "no name"})))

	requireStatus(t, rec, http.StatusBadRequest)
}

func TestCreateAuthor(t *testing.T) {
	t.Parallel()

	svc := mocks.NewMockAuthorService(t)
	svc.On("Create", mock.Anything, mock.AnythingOfType("*author.Author")).
		Return(&author.Author{ID: "a1", Name: "Grace", AvatarURL: "https://example.com/g.png"}, nil)
	h := handlers.NewAuthorHandler(svc)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/authors",
		jsonBody(t, dto.CreateAuthorRequest{Name: "Grace", Avatar: "https://example.com/g.png"})))

	requireStatus(t, rec, http.StatusCreated)
	resp := decodeJSON[dto.AuthorEnvelope](t, rec)
	assert.Equal(t, "https://example.com/g.png", resp.Author.Avatar)
	assert.Nil(t, resp.Blogs)
}
