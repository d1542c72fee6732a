package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/dto"
	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

// DefaultMaxUploadBytes is the largest accepted image when none is configured.
const DefaultMaxUploadBytes = 2 << 20

// imageField is the multipart field carrying a post's cover image.
const imageField = "image"

// BlogHandler handles HTTP requests for posts.
type BlogHandler struct {
	svc       ports.BlogService
	maxUpload int64
}

// NewBlogHandler creates a BlogHandler. maxUpload bounds the size of an
// uploaded image; a non-positive value selects DefaultMaxUploadBytes.
func NewBlogHandler(svc ports.BlogService, maxUpload int64) *BlogHandler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &BlogHandler{svc: svc, maxUpload: maxUpload}
}

// List handles GET /api/blogs. The listing omits post bodies.
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, blog.ViewAll, true)
}

// Published handles GET /api/blogs/published.
func (h *BlogHandler) Published(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, blog.ViewPublished, false)
}

// Featured handles GET /api/blogs/featured.
func (h *BlogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, blog.ViewFeatured, false)
}

// Scheduled handles GET /api/blogs/scheduled.
func (h *BlogHandler) Scheduled(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, blog.ViewScheduled, false)
}

func (h *BlogHandler) list(w http.ResponseWriter, r *http.Request, view blog.View, summaries bool) {
	q, err := listQuery(r, view)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	page, err := h.svc.List(r.Context(), q)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToBlogListResponse(page, summaries))
}

// Latest handles GET /api/blogs/latest/{limit}. An unusable limit falls
// back to the default per-category count.
func (h *BlogHandler) Latest(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.Latest(r.Context(), pathLimit(r, "limit"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToLatestResponse(groups))
}

// ByCategory handles GET /api/blogs/category/{slug}.
func (h *BlogHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r, blog.ViewCategory)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	c, page, err := h.svc.ListByCategorySlug(r.Context(), chi.URLParam(r, "slug"), q)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToCategoryBlogsResponse(c, page))
}

// Get handles GET /api/blogs/{id}.
func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToBlogEnvelope(b))
}

// GetBySlug handles GET /api/blogs/slug/{slug}.
func (h *BlogHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToBlogEnvelope(b))
}

// Create handles POST /api/blogs. The body is either multipart form data
// with an optional image file or JSON naming an already hosted imageUrl.
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeBlog(w, r)
	if !ok {
		return
	}

	var createdBy string
	if u := middleware.UserFromContext(r.Context()); u != nil {
		createdBy = u.ID
	}

	b, err := h.svc.Create(r.Context(), createdBy, in)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.ToBlogEnvelope(b))
}

// Update handles PUT /api/blogs/{id}. Absent fields keep their stored values.
func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeBlog(w, r)
	if !ok {
		return
	}

	b, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToBlogEnvelope(b))
}

// Delete handles DELETE /api/blogs/{id}.
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.MessageResponse{Success: true, Message: "Blog deleted successfully"})
}

// decodeBlog reads a post write from either encoding. On failure it writes
// the error response and returns false.
func (h *BlogHandler) decodeBlog(w http.ResponseWriter, r *http.Request) (ports.BlogInput, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req dto.BlogRequest
		if !decodeAndValidate(w, r, &req) {
			return ports.BlogInput{}, false
		}
		return req.ToInput(nil), true
	}

	in, err := h.decodeMultipart(w, r)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return ports.BlogInput{}, false
	}
	return in, true
}

func (h *BlogHandler) decodeMultipart(w http.ResponseWriter, r *http.Request) (ports.BlogInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes+h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ports.BlogInput{}, domain.NewValidationError("body", "request body too large")
		}
		return ports.BlogInput{}, domain.NewValidationError("body", "invalid multipart form")
	}

	var req dto.BlogRequest
	req.FromForm(r.MultipartForm.Value)
	if err := req.Validate(); err != nil {
		return ports.BlogInput{}, err
	}

	image, err := h.readImage(r)
	if err != nil {
		return ports.BlogInput{}, err
	}
	return req.ToInput(image), nil
}

// readImage returns the uploaded image, or nil when the form carries none.
func (h *BlogHandler) readImage(r *http.Request) (*ports.ImageUpload, error) {
	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewValidationError(imageField, "could not read uploaded file")
	}
	defer file.Close()

	tooLarge := domain.NewValidationError(imageField,
		fmt.Sprintf("File size too large. Max size is %dMB.", h.maxUpload>>20))
	if header.Size > h.maxUpload {
		return nil, tooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, domain.NewValidationError(imageField, "Only image files are allowed")
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		return nil, domain.NewValidationError(imageField, "could not read uploaded file")
	}
	if int64(len(data)) > h.maxUpload {
		return nil, tooLarge
	}

	return &ports.ImageUpload{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
	}, nil
}
