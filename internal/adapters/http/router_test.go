package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	adapthttp "github.com/jsamuelsen11/blog-platform-api/internal/adapters/http"
	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/category"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/user"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/dbconn"
	"github.com/jsamuelsen11/blog-platform-api/mocks"
)

// stubDatabase is a connection supervisor whose readiness is fixed.
type stubDatabase struct {
	err error
}

func (s stubDatabase) Ready(context.Context) error   { return s.err }
func (s stubDatabase) Refresh(context.Context) error { return s.err }

func (s stubDatabase) Probe(context.Context) dbconn.HealthStatus {
	stage := dbconn.StageConnected
	if s.err != nil {
		stage = dbconn.StageDisconnected
	}
	return dbconn.HealthStatus{
		IsConnected:     s.err == nil,
		ConnectionState: stage.String(),
		ObservedAt:      time.Now().UTC(),
	}
}

type testRouter struct {
	http.Handler
	auth       *mocks.MockAuthService
	blogs      *mocks.MockBlogService
	categories *mocks.MockCategoryService
	authors    *mocks.MockAuthorService
	registry   *mocks.MockHealthRegistry
}

func newTestRouter(t *testing.T, dbErr error, mws ...func(http.Handler) http.Handler) *testRouter {
	t.Helper()

	tr := &testRouter{
		auth:       mocks.NewMockAuthService(t),
		blogs:      mocks.NewMockBlogService(t),
		categories: mocks.NewMockCategoryService(t),
		authors:    mocks.NewMockAuthorService(t),
		registry:   mocks.NewMockHealthRegistry(t),
	}

	db := stubDatabase{err: dbErr}
	tr.Handler = adapthttp.NewRouter(adapthttp.Handlers{
		Health:     handlers.NewHealthHandler(tr.registry, db, db),
		Diagnostic: handlers.NewDiagnosticHandler(db, db, tr.registry, handlers.DiagnosticInfo{AppName: "blog-platform-api"}, time.Now()),
		Auth:       handlers.NewAuthHandler(tr.auth),
		Blog:       handlers.NewBlogHandler(tr.blogs, 0),
		Category:   handlers.NewCategoryHandler(tr.categories),
		Author:     handlers.NewAuthorHandler(tr.authors),
	}, db, tr.auth, mws...)

	return tr
}

func serve(h http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AllRoutesRegistered(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)

	expectedRoutes := []string{
		"GET /",
		"GET /health",
		"GET /health/ready",
		"GET /db-health",
		"GET /api/diagnostic/status",
		"GET /api/diagnostic/db-reconnect",
		"POST /api/auth/signup",
		"POST /api/auth/login",
		"GET /api/users/me",
		"GET /api/blogs/",
		"GET /api/blogs/published",
		"GET /api/blogs/featured",
		"GET /api/blogs/scheduled",
		"GET /api/blogs/latest/{limit}",
		"GET /api/blogs/category/{slug}",
		"GET /api/blogs/slug/{slug}",
		"GET /api/blogs/{id}",
		"POST /api/blogs/",
		"PUT /api/blogs/{id}",
		"DELETE /api/blogs/{id}",
		"GET /api/categories/",
		"GET /api/categories/{slug}",
		"POST /api/categories/",
		"GET /api/authors/",
		"GET /api/authors/{id}",
		"POST /api/authors/",
	}

	chiRouter, ok := router.Handler.(*chi.Mux)
	require.True(t, ok, "router is not *chi.Mux")

	registered := make(map[string]bool)
	err := chi.Walk(chiRouter, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	require.NoError(t, err)

	for _, key := range expectedRoutes {
		assert.True(t, registered[key], "route %s not registered", key)
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	t.Parallel()

	called := false
	testMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	router := newTestRouter(t, nil, testMW)

	rec := serve(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called, "middleware was not called")
}

func TestRouter_GateGuardsOnlyDataRoutes(t *testing.T) {
	t.Parallel()

	unreachable := &domain.ConnectivityError{Attempts: 3, Err: &dbconn.DriverError{
		Kind: dbconn.FailureServerSelection, Err: errors.New("server selection error"),
	}}
	router := newTestRouter(t, unreachable)
	router.registry.On("CheckAll", mock.Anything).Return(map[string]error{"mongodb": unreachable})

	for _, path := range []string{"/", "/health", "/api/diagnostic/status"} {
		rec := serve(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, "GET %s", path)
	}

	for _, path := range []string{"/api/blogs", "/api/categories", "/api/authors/a1", "/api/users/me"} {
		rec := serve(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "GET %s", path)
		assert.Contains(t, rec.Body.String(), `"success":false`)
	}
}

func TestRouter_PublicBlogListing(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)
	router.blogs.On("List", mock.Anything, blog.Query{View: blog.ViewAll}).Return(blog.Page{}, nil)

	rec := serve(router, http.MethodGet, "/api/blogs", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ScheduledIsNotAnID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)
	router.auth.On("Authenticate", mock.Anything, "tok").
		Return(&user.User{ID: "u1", Role: user.RoleAdmin}, nil)
	router.blogs.On("List", mock.Anything, blog.Query{View: blog.ViewScheduled}).Return(blog.Page{}, nil)

	rec := serve(router, http.MethodGet, "/api/blogs/scheduled", map[string]string{"Authorization": "Bearer tok"})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AdminRoutesRequireAdmin(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)
	router.auth.On("Authenticate", mock.Anything, "user-token").
		Return(&user.User{ID: "u1", Role: user.RoleUser}, nil)
	router.auth.On("Authenticate", mock.Anything, "admin-token").
		Return(&user.User{ID: "u2", Role: user.RoleAdmin}, nil)
	router.categories.On("List", mock.Anything).Return([]category.Category{}, nil)

	rec := serve(router, http.MethodDelete, "/api/blogs/b1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, http.MethodDelete, "/api/blogs/b1", map[string]string{"Authorization": "Bearer user-token"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(router, http.MethodGet, "/api/categories", map[string]string{"Authorization": "Bearer user-token"})
	assert.Equal(t, http.StatusOK, rec.Code, "public route rejected an authenticated user")

	router.blogs.On("Delete", mock.Anything, "b1").Return(nil)
	rec = serve(router, http.MethodDelete, "/api/blogs/b1", map[string]string{"Authorization": "Bearer admin-token"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_NotFoundReturns404(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)

	rec := serve(router, http.MethodGet, "/nonexistent", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)

	rec := serve(router, http.MethodPatch, "/api/categories", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
