package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/platform/logging"
)

// sensitiveHeaders carry credentials and are never logged verbatim.
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
	"x-api-key":     true,
}

// Logging returns middleware that stores a request-scoped logger, enriched
// with the request and correlation IDs, via logging.WithLogger and logs
// each request once it completes. Server errors are logged at ERROR,
// client errors at WARN, everything else at INFO. Request headers are
// logged at DEBUG with credentials redacted.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			child := logger.With(
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("correlation_id", CorrelationIDFromContext(ctx)),
			)
			ctx = logging.WithLogger(ctx, child)

			if child.Enabled(ctx, slog.LevelDebug) {
				child.DebugContext(ctx, "request headers", headerAttrs(r.Header)...)
			}

			rec := recordResponse(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			child.Log(ctx, levelForStatus(rec.Status()), "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.Status()),
				slog.Int64("bytes", rec.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// headerAttrs renders headers as sorted log attributes, redacting the
// sensitive ones and joining repeated values with commas.
func headerAttrs(headers http.Header) []any {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	attrs := make([]any, 0, len(keys))
	for _, k := range keys {
		v := strings.Join(headers[k], ",")
		if sensitiveHeaders[strings.ToLower(k)] {
			v = "[REDACTED]"
		}
		attrs = append(attrs, slog.String(k, v))
	}
	return attrs
}
