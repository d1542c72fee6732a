package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/dto"
	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/user"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/dbconn"
)

var testTime = time.Date(2026, 2, 12, 15, 4, 5, 0, time.UTC)

func withChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withUser(r *http.Request, u *user.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), u))
}

func withDetails(r *http.Request) *http.Request {
	return r.WithContext(dto.WithDetails(r.Context(), true))
}

func validBlog() blog.Blog {
	return blog.Blog{
		ID:          "66f0c0ffee00000000000001",
		Title:       "Hello",
		Slug:        "hello",
		Content:     "<p>body</p>",
		Excerpt:     "short",
		Status:      blog.StatusPublished,
		PublishDate: testTime,
		CategoryID:  "66f0c0ffee00000000000002",
		AuthorID:    "66f0c0ffee00000000000003",
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON body: %v", err)
	}
	return buf
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	return result
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

// fakeDatabase stands in for the connection supervisor. Probe reports
// connected once Ready or Refresh succeeded.
type fakeDatabase struct {
	connected  bool
	readyErr   error
	refreshErr error
	readies    int
	refreshes  int
}

func (f *fakeDatabase) Probe(context.Context) dbconn.HealthStatus {
	status := dbconn.HealthStatus{
		IsConnected:     f.connected,
		ConnectionState: dbconn.StageDisconnected.String(),
		ObservedAt:      testTime,
	}
	if f.connected {
		ok := true
		status.ConnectionState = dbconn.StageConnected.String()
		status.DBName = "blog-platform"
		status.Host = "cluster0.example.net:27017"
		status.PingSucceeded = &ok
	}
	return status
}

func (f *fakeDatabase) Ready(context.Context) error {
	f.readies++
	if f.readyErr != nil {
		return f.readyErr
	}
	f.connected = true
	return nil
}

func (f *fakeDatabase) Refresh(context.Context) error {
	f.refreshes++
	f.connected = false
	if f.refreshErr != nil {
		return f.refreshErr
	}
	f.connected = true
	return nil
}
