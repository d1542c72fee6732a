package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/dto"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/user"
)

var (
	errNoToken  = fmt.Errorf("%w: no token, authorization denied", domain.ErrUnauthorized)
	errNotAdmin = fmt.Errorf("%w: access denied, admin privileges required", domain.ErrForbidden)
)

// Authenticator resolves a bearer token to an account. ports.AuthService
// satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

type userKey struct{}

// WithUser stores the authenticated account in ctx.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the authenticated account, or nil.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(userKey{}).(*user.User)
	return u
}

// Authenticate returns middleware that requires an "Authorization: Bearer"
// header naming a valid token and stores the resolved account in the
// request context.
func Authenticate(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				dto.WriteErrorResponse(w, r, errNoToken)
				return
			}

			u, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				dto.WriteErrorResponse(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireAdmin returns middleware that admits only admin accounts. It must
// run after Authenticate.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFromContext(r.Context())
			if u == nil {
				dto.WriteErrorResponse(w, r, errNoToken)
				return
			}
			if !u.IsAdmin() {
				dto.WriteErrorResponse(w, r, errNotAdmin)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
