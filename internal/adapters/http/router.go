// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/dto"
	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
)

// Handlers groups the route handlers the router mounts.
type Handlers struct {
	Health     *handlers.HealthHandler
	Diagnostic *handlers.DiagnosticHandler
	Auth       *handlers.AuthHandler
	Blog       *handlers.BlogHandler
	Category   *handlers.CategoryHandler
	Author     *handlers.AuthorHandler
}

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given. Data routes under /api
// pass the database gate first; health and diagnostic routes never do, so
// they answer while the store is unreachable.
func NewRouter(
	h Handlers,
	db middleware.ConnectionChecker,
	auth middleware.Authenticator,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		dto.WriteErrorResponse(w, req, fmt.Errorf("route %s: %w", req.URL.Path, domain.ErrNotFound))
	})

	r.Get("/", h.Health.Root)
	r.Get("/health", h.Health.Liveness)
	r.Get("/health/ready", h.Health.Readiness)
	r.Get("/db-health", h.Health.DBHealth)

	authenticated := middleware.Authenticate(auth)
	admin := middleware.Chain(authenticated, middleware.RequireAdmin())

	r.Route("/api", func(r chi.Router) {
		r.Route("/diagnostic", func(r chi.Router) {
			r.Get("/status", h.Diagnostic.Status)
			r.Get("/db-reconnect", h.Diagnostic.Reconnect)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.DatabaseGate(db))

			r.Post("/auth/signup", h.Auth.Signup)
			r.Post("/auth/login", h.Auth.Login)
			r.With(authenticated).Get("/users/me", h.Auth.Me)

			r.Route("/blogs", func(r chi.Router) {
				r.Get("/", h.Blog.List)
				r.Get("/published", h.Blog.Published)
				r.Get("/featured", h.Blog.Featured)
				r.Get("/latest/{limit}", h.Blog.Latest)
				r.Get("/category/{slug}", h.Blog.ByCategory)
				r.Get("/slug/{slug}", h.Blog.GetBySlug)
				r.Get("/{id}", h.Blog.Get)

				r.Group(func(r chi.Router) {
					r.Use(admin)
					r.Get("/scheduled", h.Blog.Scheduled)
					r.Post("/", h.Blog.Create)
					r.Put("/{id}", h.Blog.Update)
					r.Delete("/{id}", h.Blog.Delete)
				})
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.Category.List)
				r.Get("/{slug}", h.Category.GetBySlug)
				r.With(admin).Post("/", h.Category.Create)
			})

			r.Route("/authors", func(r chi.Router) {
				r.Get("/", h.Author.List)
				r.Get("/{id}", h.Author.Get)
				r.With(admin).Post("/", h.Author.Create)
			})
		})
	})

	return r
}
