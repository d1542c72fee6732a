package handlers

import (
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/dto"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/dbconn"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/envcheck"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/logging"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

// reportedModules are the dependencies whose versions the status route
// reports.
var reportedModules = []string{
	"go.mongodb.org/mongo-driver/v2",
	"github.com/go-chi/chi/v5",
}

// DiagnosticInfo is the static part of the status report.
type DiagnosticInfo struct {
	AppName     string
	AppVersion  string
	Environment string
	Vercel      bool
	Region      string
	VercelEnv   string
	// Env is what the environment validator inspects on every request.
	Env envcheck.Settings
}

// DiagnosticHandler serves /api/diagnostic. Its routes stay reachable when
// the document store is down.
type DiagnosticHandler struct {
	probe    DatabaseProbe
	db       DatabaseConnector
	registry ports.HealthRegistry
	info     DiagnosticInfo
	started  time.Time
	now      func() time.Time
}

// NewDiagnosticHandler creates a DiagnosticHandler. started is used to
// report uptime.
func NewDiagnosticHandler(
	probe DatabaseProbe,
	db DatabaseConnector,
	registry ports.HealthRegistry,
	info DiagnosticInfo,
	started time.Time,
) *DiagnosticHandler {
	return &DiagnosticHandler{
		probe:    probe,
		db:       db,
		registry: registry,
		info:     info,
		started:  started,
		now:      time.Now,
	}
}

// maskedDatabase hides the server address behind "connected".
type maskedDatabase struct {
	dbconn.HealthStatus
	Host *string `json:"host"`
}

type runtimeInfo struct {
	Version     string      `json:"version"`
	Environment string      `json:"environment"`
	Memory      memoryUsage `json:"memory"`
	Uptime      float64     `json:"uptime"`
	Goroutines  int         `json:"goroutines"`
}

type memoryUsage struct {
	Alloc     uint64 `json:"alloc"`
	HeapInuse uint64 `json:"heapInuse"`
	Sys       uint64 `json:"sys"`
	NumGC     uint32 `json:"numGC"`
}

type environmentStatus struct {
	IsValid bool        `json:"isValid"`
	Errors  []string    `json:"errors"`
	Runtime runtimeInfo `json:"runtime"`
}

type applicationInfo struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

type deploymentInfo struct {
	IsVercel    bool   `json:"isVercel"`
	Region      string `json:"region"`
	Environment string `json:"environment"`
}

// StatusResponse answers GET /api/diagnostic/status.
type StatusResponse struct {
	Success     bool              `json:"success"`
	Timestamp   string            `json:"timestamp"`
	Status      string            `json:"status"`
	Database    maskedDatabase    `json:"database"`
	Environment environmentStatus `json:"environment"`
	Application applicationInfo   `json:"application"`
	Deployment  deploymentInfo    `json:"deployment"`
	Checks      map[string]string `json:"checks"`
}

// Status handles GET /api/diagnostic/status. It always answers 200; a
// disconnected store only degrades the reported status.
func (h *DiagnosticHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report := envcheck.Validate(h.info.Env)
	health := h.probe.Probe(ctx)
	checks, _ := summarizeChecks(ctx, h.registry.CheckAll(ctx))

	status := "degraded"
	if health.IsConnected {
		status = "healthy"
	}

	db := maskedDatabase{HealthStatus: health}
	if health.Host != "" {
		masked := "connected"
		db.Host = &masked
	}

	writeJSON(w, r, http.StatusOK, StatusResponse{
		Success:   true,
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
		Status:    status,
		Database:  db,
		Environment: environmentStatus{
			IsValid: report.IsValid,
			Errors:  report.Errors,
			Runtime: h.runtimeInfo(),
		},
		Application: applicationInfo{
			Name:         h.info.AppName,
			Version:      h.info.AppVersion,
			Dependencies: moduleVersions(),
		},
		Deployment: deploymentInfo{
			IsVercel:    h.info.Vercel,
			Region:      orUnknown(h.info.Region),
			Environment: orUnknown(h.info.VercelEnv),
		},
		Checks: checks,
	})
}

type reconnectResponse struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message"`
	Database *dbconn.HealthStatus `json:"database,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// Reconnect handles GET /api/diagnostic/db-reconnect: the current
// connection is torn down and established again.
func (h *DiagnosticHandler) Reconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	logger.InfoContext(ctx, "forcing database reconnection")

	if err := h.db.Refresh(ctx); err != nil {
		logger.ErrorContext(ctx, "database reconnection failed", slog.Any("error", err))

		resp := reconnectResponse{
			Success: false,
			Message: "Database reconnection failed",
			Error:   "Failed to reconnect to database",
		}
		if dto.DetailsEnabled(ctx) {
			resp.Error = err.Error()
		}
		writeJSON(w, r, http.StatusInternalServerError, resp)
		return
	}

	health := h.probe.Probe(ctx)
	writeJSON(w, r, http.StatusOK, reconnectResponse{
		Success:  true,
		Message:  "Database reconnection attempt completed",
		Database: &health,
	})
}

func (h *DiagnosticHandler) runtimeInfo() runtimeInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return runtimeInfo{
		Version:     runtime.Version(),
		Environment: h.info.Environment,
		Memory: memoryUsage{
			Alloc:     m.Alloc,
			HeapInuse: m.HeapInuse,
			Sys:       m.Sys,
			NumGC:     m.NumGC,
		},
		Uptime:     h.now().Sub(h.started).Seconds(),
		Goroutines: runtime.NumGoroutine(),
	}
}

// moduleVersions reports the linked versions of reportedModules. Test
// binaries carry no dependency info, so the map may be empty.
func moduleVersions() map[string]string {
	out := make(map[string]string, len(reportedModules))
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}
	for _, dep := range info.Deps {
		for _, path := range reportedModules {
			if dep.Path == path {
				out[path] = dep.Version
			}
		}
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
