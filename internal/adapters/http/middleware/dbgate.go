package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/dto"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/dbconn"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/logging"
)

// Gate messages returned in the "error" field.
const (
	gateMessage            = "Database connection failed"
	gateErrServerSelection = "Unable to reach database server. Please try again later."
	gateErrTimeout         = "Database connection timed out. Please try again later."
	gateErrHostNotFound    = "Database host not found. Please try again later."
	gateErrConfiguration   = "Database configuration error. Please contact support."
	gateErrUnavailable     = "Service temporarily unavailable. Please try again later."
)

// ConnectionChecker is the part of the connection supervisor the gate
// needs: Ready returns nil once a live connection exists, establishing one
// if necessary.
type ConnectionChecker interface {
	Ready(ctx context.Context) error
}

// GateResponse is the body written when the gate rejects a request.
type GateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// DatabaseGate returns middleware that lets a request through only when the
// document store is reachable. Concurrent requests arriving while the store
// is down share one connection attempt. A rejected request gets 503, or 500
// when the connection settings themselves are broken.
func DatabaseGate(db ConnectionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			err := db.Ready(ctx)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			kind := dbconn.Classify(err)
			status, safe := gateFailure(kind)

			logging.FromContext(ctx).ErrorContext(ctx, "database gate rejected request",
				slog.String("path", r.URL.Path),
				slog.String("failure", kind.String()),
				slog.Any("error", err),
			)

			resp := GateResponse{Success: false, Message: gateMessage, Error: safe}
			if dto.DetailsEnabled(ctx) {
				resp.Details = err.Error()
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
				logging.FromContext(ctx).ErrorContext(ctx, "failed to encode gate response",
					slog.Any("error", encErr),
				)
			}
		})
	}
}

func gateFailure(kind dbconn.FailureKind) (int, string) {
	switch kind {
	case dbconn.FailureConfiguration:
		return http.StatusInternalServerError, gateErrConfiguration
	case dbconn.FailureServerSelection:
		return http.StatusServiceUnavailable, gateErrServerSelection
	case dbconn.FailureTimeout:
		return http.StatusServiceUnavailable, gateErrTimeout
	case dbconn.FailureHostNotFound:
		return http.StatusServiceUnavailable, gateErrHostNotFound
	default:
		return http.StatusServiceUnavailable, gateErrUnavailable
	}
}
