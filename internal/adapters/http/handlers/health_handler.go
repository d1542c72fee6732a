package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/dto"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/dbconn"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/logging"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

const (
	statusOK       = "ok"
	statusError    = "error"
	statusReady    = "ready"
	statusNotReady = "not_ready"
)

// DatabaseProbe observes the document store connection without changing it.
type DatabaseProbe interface {
	Probe(ctx context.Context) dbconn.HealthStatus
}

// DatabaseConnector drives the connection supervisor. Ready connects if
// needed; Refresh tears the current connection down first.
type DatabaseConnector interface {
	Ready(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// HealthHandler serves the liveness, readiness and database health routes.
// None of them sit behind the database gate.
type HealthHandler struct {
	registry ports.HealthRegistry
	probe    DatabaseProbe
	db       DatabaseConnector
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(registry ports.HealthRegistry, probe DatabaseProbe, db DatabaseConnector) *HealthHandler {
	return &HealthHandler{registry: registry, probe: probe, db: db}
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello World"))
}

// Liveness handles GET /health. Always returns 200 OK.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": statusOK})
}

// Readiness handles GET /health/ready. Returns 200 if all checks pass,
// 503 if any check fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	checks, healthy := summarizeChecks(r.Context(), h.registry.CheckAll(r.Context()))

	status := statusReady
	code := http.StatusOK
	if !healthy {
		status = statusNotReady
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, r, code, map[string]any{
		"status": status,
		"checks": checks,
	})
}

type dbHealthResponse struct {
	Status   string              `json:"status"`
	Database dbconn.HealthStatus `json:"database"`
	Message  string              `json:"message,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// DBHealth handles GET /db-health. A disconnected store gets one
// establishment before the handler answers.
func (h *HealthHandler) DBHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current := h.probe.Probe(ctx)
	if current.IsConnected {
		writeJSON(w, r, http.StatusOK, dbHealthResponse{Status: statusOK, Database: current})
		return
	}

	err := h.db.Ready(ctx)
	updated := h.probe.Probe(ctx)

	if err == nil && updated.IsConnected {
		writeJSON(w, r, http.StatusOK, dbHealthResponse{
			Status:   statusOK,
			Database: updated,
			Message:  "Database reconnected successfully",
		})
		return
	}

	resp := dbHealthResponse{
		Status:   statusError,
		Database: updated,
		Message:  "Failed to reconnect to database",
	}
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "database health reconnect failed", slog.Any("error", err))
		if dto.DetailsEnabled(ctx) {
			resp.Error = err.Error()
		}
	}
	writeJSON(w, r, http.StatusServiceUnavailable, resp)
}

// summarizeChecks renders registry results as "ok" or a failure note. The
// raw error is included only when details are enabled.
func summarizeChecks(ctx context.Context, results map[string]error) (map[string]string, bool) {
	checks := make(map[string]string, len(results))
	healthy := true
	for name, err := range results {
		switch {
		case err == nil:
			checks[name] = statusOK
		case dto.DetailsEnabled(ctx):
			checks[name] = err.Error()
			healthy = false
		default:
			checks[name] = statusError
			healthy = false
		}
	}
	return checks, healthy
}
