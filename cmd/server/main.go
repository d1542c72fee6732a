// Package main is the entry point for the blog API. It wires all dependencies
// using samber/do v2, starts the HTTP server, and handles graceful shutdown
// on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/clients/media"
	adapthttp "github.com/jsamuelsen11/blog-platform-api/internal/adapters/http"
	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/store/mongostore"

	"github.com/jsamuelsen11/blog-platform-api/internal/app"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/auth"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/config"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/dbconn"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/envcheck"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/health"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/httpclient"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/logging"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/telemetry"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout = 15 * time.Second
	dbCloseTimeout        = 10 * time.Second
	otelShutdownTimeout   = 5 * time.Second
)

// supervisor is the concrete connection supervisor type shared by the gate,
// the store and the diagnostics handlers.
type supervisor = dbconn.Supervisor[*mongostore.Conn]

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	started := time.Now()

	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, dev, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr,
		logging.WithService(cfg.App.Name, cfg.App.Version, cfg.App.Environment))
	slog.SetDefault(logger)

	logEnvReport(logger, envcheck.Validate(envSettings(cfg)))

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)

	registerDependencies(injector, cfg, logger, started)

	// Resolve the server (eagerly wires the full graph).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	db := do.MustInvoke[*supervisor](injector)
	registry.Register(db)
	registry.Register(do.MustInvoke[*media.Client](injector))

	// Warm the connection so the first request does not pay for it. Failure
	// is not fatal: the gate retries on demand.
	go func() {
		if err := db.Ready(ctx); err != nil {
			logger.Warn("initial database connection failed", slog.Any("error", err))
		}
	}()

	// Start server in background.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		closeDatabase(logger, db)
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown: drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Wait for Start() goroutine to return.
	<-serverErr

	closeDatabase(logger, db)

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

func closeDatabase(logger *slog.Logger, db *supervisor) {
	ctx, cancel := context.WithTimeout(context.Background(), dbCloseTimeout)
	defer cancel()

	if err := db.Close(ctx); err != nil {
		logger.Error("database close error", slog.Any("error", err))
	}
}

func envSettings(cfg *config.Config) envcheck.Settings {
	return envcheck.Settings{
		DatabaseURI: cfg.Database.URI,
		JWTSecret:   cfg.Auth.JWTSecret,
	}
}

func logEnvReport(logger *slog.Logger, report envcheck.Report) {
	if !report.IsValid {
		logger.Error("environment validation failed", slog.Any("errors", report.Errors))
		return
	}
	for _, w := range report.Warnings() {
		logger.Warn(w)
	}
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp, cfg.Telemetry.ServiceName)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger, started time.Time) {
	registerStore(injector, cfg, logger)
	registerServices(injector, cfg, logger)
	registerHTTP(injector, cfg, logger, started)
}

func registerStore(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(i do.Injector) (*supervisor, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		settings := dbconn.Settings{
			URI:                    cfg.Database.URI,
			Database:               cfg.Database.Name,
			ServerSelectionTimeout: cfg.Database.ServerSelectionTimeout,
			SocketTimeout:          cfg.Database.SocketTimeout,
			ConnectTimeout:         cfg.Database.ConnectTimeout,
			MaxPoolSize:            cfg.Database.MaxPoolSize,
			MinPoolSize:            cfg.Database.MinPoolSize,
		}
		return dbconn.New[*mongostore.Conn](
			mongostore.Connector{AppName: cfg.App.Name},
			settings,
			dbconn.WithRetry(cfg.Database.MaxAttempts, cfg.Database.RetryInterval),
			dbconn.WithLogger(logger),
			dbconn.WithMetrics(metrics),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*dbconn.Prober[*mongostore.Conn], error) {
		db := do.MustInvoke[*supervisor](i)
		return dbconn.NewProber[*mongostore.Conn](db, cfg.Database.ProbeTimeout), nil
	})

	do.Provide(injector, func(i do.Injector) (*mongostore.Store, error) {
		db := do.MustInvoke[*supervisor](i)
		return mongostore.New(db, cfg.Database.QueryTimeout), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.UserRepository, error) {
		return mongostore.NewUserRepository(do.MustInvoke[*mongostore.Store](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.BlogRepository, error) {
		return mongostore.NewBlogRepository(do.MustInvoke[*mongostore.Store](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.CategoryRepository, error) {
		return mongostore.NewCategoryRepository(do.MustInvoke[*mongostore.Store](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.AuthorRepository, error) {
		return mongostore.NewAuthorRepository(do.MustInvoke[*mongostore.Store](i)), nil
	})
}

func registerServices(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(i do.Injector) (*httpclient.Client, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return httpclient.New(&cfg.Media.Client, "cloudinary",
			httpclient.WithMetrics(metrics),
			httpclient.WithLogger(logger),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*media.Client, error) {
		client := do.MustInvoke[*httpclient.Client](i)
		return media.New(&cfg.Media, client, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(health.DefaultCheckTimeout), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.AuthService, error) {
		users := do.MustInvoke[ports.UserRepository](i)
		tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
		hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
		return app.NewAuthService(users, tokens, hasher, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.BlogService, error) {
		return app.NewBlogService(
			do.MustInvoke[ports.BlogRepository](i),
			do.MustInvoke[ports.CategoryRepository](i),
			do.MustInvoke[ports.AuthorRepository](i),
			do.MustInvoke[*media.Client](i),
			ports.UploadOptions{
				Folder:         cfg.Media.Folder,
				Transformation: cfg.Media.Transformation,
			},
			logger,
		), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.CategoryService, error) {
		return app.NewCategoryService(do.MustInvoke[ports.CategoryRepository](i), logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.AuthorService, error) {
		return app.NewAuthorService(
			do.MustInvoke[ports.AuthorRepository](i),
			do.MustInvoke[ports.BlogRepository](i),
			logger,
		), nil
	})
}

func registerHTTP(injector *do.RootScope, cfg *config.Config, logger *slog.Logger, started time.Time) {
	do.Provide(injector, func(i do.Injector) (adapthttp.Handlers, error) {
		db := do.MustInvoke[*supervisor](i)
		probe := do.MustInvoke[*dbconn.Prober[*mongostore.Conn]](i)
		registry := do.MustInvoke[ports.HealthRegistry](i)

		info := handlers.DiagnosticInfo{
			AppName:     cfg.App.Name,
			AppVersion:  cfg.App.Version,
			Environment: cfg.App.Environment,
			Vercel:      cfg.Deployment.Vercel,
			Region:      cfg.Deployment.Region,
			VercelEnv:   cfg.Deployment.Environment,
			Env:         envSettings(cfg),
		}

		return adapthttp.Handlers{
			Health:     handlers.NewHealthHandler(registry, probe, db),
			Diagnostic: handlers.NewDiagnosticHandler(probe, db, registry, info, started),
			Auth:       handlers.NewAuthHandler(do.MustInvoke[ports.AuthService](i)),
			Blog:       handlers.NewBlogHandler(do.MustInvoke[ports.BlogService](i), cfg.Media.MaxUploadBytes),
			Category:   handlers.NewCategoryHandler(do.MustInvoke[ports.CategoryService](i)),
			Author:     handlers.NewAuthorHandler(do.MustInvoke[ports.AuthorService](i)),
		}, nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		h := do.MustInvoke[adapthttp.Handlers](i)
		db := do.MustInvoke[*supervisor](i)
		authSvc := do.MustInvoke[ports.AuthService](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(h, db, authSvc,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Details(cfg.App.IsDevelopment()),
			middleware.CORS(),
			middleware.Timeout(cfg.Server.RequestTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
