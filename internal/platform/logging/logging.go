// Package logging builds the service's slog logger and carries it through
// request contexts.
//
//	logger := logging.New("info", "json", os.Stderr,
//	    logging.WithService("blog-platform-api", "1.4.0", "production"))
//	ctx = logging.WithLogger(ctx, logger)
//	logging.FromContext(ctx).ErrorContext(ctx, "failed to fetch blog",
//	    slog.String("operation", "GetBlog"),
//	    slog.String("blog_id", id),
//	    slog.Any("error", err),
//	)
//
// Error entries name the operation and the entity IDs involved and attach
// the full chain with slog.Any("error", err). Behind the HTTP logging
// middleware the context logger already carries request_id and
// correlation_id. Every handler redacts credentials before output, see
// redact.go.
package logging

import (
	"context"
	"io"
	"log/slog"
)

// Option adjusts a logger built by New.
type Option func(*settings)

type settings struct {
	attrs []any
}

// WithService stamps every entry with the service identity. Empty values
// are left out.
func WithService(name, version, environment string) Option {
	return func(s *settings) {
		for _, kv := range [][2]string{
			{"service", name},
			{"version", version},
			{"environment", environment},
		} {
			if kv[1] != "" {
				s.attrs = append(s.attrs, slog.String(kv[0], kv[1]))
			}
		}
	}
}

// New returns a logger writing to w.
//
// level accepts anything slog.Level understands ("debug", "WARN",
// "info+2"); anything else means info. Debug loggers also report the
// source location. format "text" selects logfmt-style output and every
// other value selects JSON.
func New(level, format string, w io.Writer, opts ...Option) *slog.Logger {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	lvl := parseLevel(level)
	handlerOpts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl <= slog.LevelDebug,
		ReplaceAttr: redactor(),
	}

	var h slog.Handler = slog.NewJSONHandler(w, handlerOpts)
	if format == "text" {
		h = slog.NewTextHandler(w, handlerOpts)
	}

	logger := slog.New(h)
	if len(s.attrs) > 0 {
		logger = logger.With(s.attrs...)
	}
	return logger
}

type ctxKey struct{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func parseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
