// Package middleware provides HTTP middleware for the inbound request pipeline.
//
// Every request passes through, in order:
//
//	Recovery → RequestID → CorrelationID → OpenTelemetry → Logging → Details → CORS → Timeout
//
// Requests under /api additionally pass DatabaseGate, and admin-only routes
// pass Authenticate and RequireAdmin. Each middleware is a
// func(http.Handler) http.Handler and can be composed with Chain.
package middleware

import "net/http"

// Chain composes middleware so that the first argument is outermost:
//
//	Chain(Recovery, RequestID, Logging)(h) == Recovery(RequestID(Logging(h)))
func Chain(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(handler http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}

// statusRecorder remembers what a handler sent so that outer middleware can
// log, trace, or recover after the fact. Wrapping an existing statusRecorder
// returns it unchanged, so stacked middleware share one record.
type statusRecorder struct {
	http.ResponseWriter
	status    int
	committed bool
	bytes     int64
}

func recordResponse(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w}
}

// Status is the code sent to the client. net/http answers 200 for a
// handler that writes nothing, so an uncommitted response reports 200 too.
func (rec *statusRecorder) Status() int {
	if !rec.committed {
		return http.StatusOK
	}
	return rec.status
}

// Committed reports whether headers have gone out, after which the status
// can no longer change.
func (rec *statusRecorder) Committed() bool {
	return rec.committed
}

// BytesWritten is the size of the body written so far.
func (rec *statusRecorder) BytesWritten() int64 {
	return rec.bytes
}

// WriteHeader records code the first time it is called. 1xx informational
// codes are forwarded without committing.
func (rec *statusRecorder) WriteHeader(code int) {
	if rec.committed {
		return
	}
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		rec.ResponseWriter.WriteHeader(code)
		return
	}
	rec.status = code
	rec.committed = true
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if !rec.committed {
		rec.status = http.StatusOK
		rec.committed = true
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}
