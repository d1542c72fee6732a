package handlers

import (
	"errors"
	"net/http"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/dto"
	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

// AuthHandler handles signup, login and the current-user route.
type AuthHandler struct {
	svc ports.AuthService
}

// NewAuthHandler creates a new AuthHandler with the given service port.
func NewAuthHandler(svc ports.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Signup handles POST /api/auth/signup. A taken email is reported as a
// validation failure on the email field.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.svc.Signup(r.Context(), req.ToRegistration())
	if errors.Is(err, domain.ErrConflict) {
		err = domain.NewValidationError("email", "user with this email already exists")
	}
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.ToAuthResponse(res))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToAuthResponse(res))
}

// Me handles GET /api/users/me. It runs behind middleware.Authenticate.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		dto.WriteErrorResponse(w, r, domain.ErrUnauthorized)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.CurrentUserResponse{Success: true, User: dto.ToUserResponse(u)})
}
