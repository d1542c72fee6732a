package middleware

import (
	"net/http"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/dto"
)

// Details returns middleware that decides, once per request, whether error
// responses may carry raw error text. Only development deployments enable
// it; everywhere else clients get the fixed safe messages.
func Details(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(dto.WithDetails(r.Context(), enabled)))
		})
	}
}
