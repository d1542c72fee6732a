package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/mocks"
)

// --- Root and liveness ---

func TestRoot_HelloWorld(t *testing.T) {
	t.Parallel()

	h := handlers.NewHealthHandler(mocks.NewMockHealthRegistry(t), &fakeDatabase{}, &fakeDatabase{})

	rec := httptest.NewRecorder()
	h.Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	requireStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "Hello World" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "Hello World")
	}
}

func TestLiveness_AlwaysOK(t *testing.T) {
	t.Parallel()

	db := &fakeDatabase{readyErr: errors.New("unreachable")}
	h := handlers.NewHealthHandler(mocks.NewMockHealthRegistry(t), db, db)

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	requireStatus(t, rec, http.StatusOK)

	resp := decodeJSON[map[string]string](t, rec)
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want %q", resp["status"], "ok")
	}
	if db.readies != 0 {
		t.Errorf("liveness touched the database %d time(s)", db.readies)
	}
}

// --- Readiness ---

func TestReadiness_AllHealthy(t *testing.T) {
	t.Parallel()

	registry := mocks.NewMockHealthRegistry(t)
	registry.On("CheckAll", mock.Anything).Return(map[string]error{
		"mongodb":    nil,
		"cloudinary": nil,
	})

	h := handlers.NewHealthHandler(registry, &fakeDatabase{}, &fakeDatabase{})

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	requireStatus(t, rec, http.StatusOK)

	resp := decodeJSON[map[string]any](t, rec)
	if resp["status"] != "ready" {
		t.Errorf("status = %q, want %q", resp["status"], "ready")
	}
	checks, ok := resp["checks"].(map[string]any)
	if !ok {
		t.Fatal("checks field not a map")
	}
	if checks["mongodb"] != "ok" {
		t.Errorf("mongodb check = %v, want %q", checks["mongodb"], "ok")
	}
}

func TestReadiness_Unhealthy(t *testing.T) {
	t.Parallel()

	registry := mocks.NewMockHealthRegistry(t)
	registry.On("CheckAll", mock.Anything).Return(map[string]error{
		"mongodb":    errors.New("server selection error: 10.0.0.7:27017"),
		"cloudinary": nil,
	})

	h := handlers.NewHealthHandler(registry, &fakeDatabase{}, &fakeDatabase{})

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	requireStatus(t, rec, http.StatusServiceUnavailable)

	resp := decodeJSON[map[string]any](t, rec)
	if resp["status"] != "not_ready" {
		t.Errorf("status = %q, want %q", resp["status"], "not_ready")
	}
	checks, _ := resp["checks"].(map[string]any)
	if checks["mongodb"] != "error" {
		t.Errorf("mongodb check = %v, want %q without details", checks["mongodb"], "error")
	}
}

func TestReadiness_DetailsShowRawError(t *testing.T) {
	t.Parallel()

	registry := mocks.NewMockHealthRegistry(t)
	registry.On("CheckAll", mock.Anything).Return(map[string]error{
		"mongodb": errors.New("server selection error"),
	})

	h := handlers.NewHealthHandler(registry, &fakeDatabase{}, &fakeDatabase{})

	rec := httptest.NewRecorder()
	h.Readiness(rec, withDetails(httptest.NewRequest(http.MethodGet, "/health/ready", nil)))

	resp := decodeJSON[map[string]any](t, rec)
	checks, _ := resp["checks"].(map[string]any)
	if checks["mongodb"] != "server selection error" {
		t.Errorf("mongodb check = %v, want raw error", checks["mongodb"])
	}
}

// --- DBHealth ---

func TestDBHealth_Connected(t *testing.T) {
	t.Parallel()

	db := &fakeDatabase{connected: true}
	h := handlers.NewHealthHandler(mocks.NewMockHealthRegistry(t), db, db)

	rec := httptest.NewRecorder()
	h.DBHealth(rec, httptest.NewRequest(http.MethodGet, "/db-health", nil))

	requireStatus(t, rec, http.StatusOK)

	resp := decodeJSON[map[string]any](t, rec)
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if _, ok := resp["message"]; ok {
		t.Errorf("message = %v, want none for an already connected store", resp["message"])
	}
	if db.readies != 0 {
		t.Errorf("Ready called %d time(s), want 0", db.readies)
	}
}

func TestDBHealth_Reconnects(t *testing.T) {
	t.Parallel()

	db := &fakeDatabase{}
	h := handlers.NewHealthHandler(mocks.NewMockHealthRegistry(t), db, db)

	rec := httptest.NewRecorder()
	h.DBHealth(rec, httptest.NewRequest(http.MethodGet, "/db-health", nil))

	requireStatus(t, rec, http.StatusOK)

	resp := decodeJSON[map[string]any](t, rec)
	if resp["message"] != "Database reconnected successfully" {
		t.Errorf("message = %v, want reconnect notice", resp["message"])
	}
	database, _ := resp["database"].(map[string]any)
	if database["isConnected"] != true {
		t.Errorf("database.isConnected = %v, want true", database["isConnected"])
	}
	if db.readies != 1 {
		t.Errorf("Ready called %d time(s), want 1", db.readies)
	}
}

func TestDBHealth_ReconnectFails(t *testing.T) {
	t.Parallel()

	db := &fakeDatabase{readyErr: &domain.ConnectivityError{Attempts: 3, Err: errors.New("connection refused")}}
	h := handlers.NewHealthHandler(mocks.NewMockHealthRegistry(t), db, db)

	rec := httptest.NewRecorder()
	h.DBHealth(rec, httptest.NewRequest(http.MethodGet, "/db-health", nil))

	requireStatus(t, rec, http.StatusServiceUnavailable)

	resp := decodeJSON[map[string]any](t, rec)
	if resp["status"] != "error" {
		t.Errorf("status = %v, want error", resp["status"])
	}
	if resp["message"] != "Failed to reconnect to database" {
		t.Errorf("message = %v, want failure notice", resp["message"])
	}
	if _, ok := resp["error"]; ok {
		t.Error("raw error exposed without details enabled")
	}
}
