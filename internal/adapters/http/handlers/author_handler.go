package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/dto"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

// AuthorHandler handles HTTP requests for authors.
type AuthorHandler struct {
	svc ports.AuthorService
}

// NewAuthorHandler creates a new AuthorHandler with the given service port.
func NewAuthorHandler(svc ports.AuthorService) *AuthorHandler {
	return &AuthorHandler{svc: svc}
}

// List handles GET /api/authors.
func (h *AuthorHandler) List(w http.ResponseWriter, r *http.Request) {
	authors, err := h.svc.List(r.Context())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToAuthorListResponse(authors))
}

// Get handles GET /api/authors/{id}. The response lists the author's live
// published posts.
func (h *AuthorHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, blogs, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	if blogs == nil {
		blogs = []blog.Blog{}
	}

	writeJSON(w, r, http.StatusOK, dto.ToAuthorEnvelope(a, blogs))
}

// Create handles POST /api/authors.
func (h *AuthorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAuthorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.svc.Create(r.Context(), req.ToAuthor())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.ToAuthorEnvelope(created, nil))
}
