// Command dbcheck connects to the configured document store, pings it once
// and prints the resulting health status as JSON. It exits non-zero when the
// store cannot be reached, which makes it usable as a deploy gate.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/adapters/store/mongostore"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/config"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/dbconn"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/envcheck"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		profile   = flag.String("profile", os.Getenv("APP_PROFILE"), "config profile to load")
		configDir = flag.String("config-dir", "configs", "directory holding the YAML config files")
		timeout   = flag.Duration("timeout", 2*time.Minute, "overall time allowed for the check")
	)
	flag.Parse()

	if *profile == "" {
		return errors.New("a profile is required (-profile or APP_PROFILE)")
	}

	cfg, err := config.Load(*profile, config.WithConfigDir(*configDir))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr,
		logging.WithService(cfg.App.Name, cfg.App.Version, cfg.App.Environment))

	report := envcheck.Validate(envcheck.Settings{
		DatabaseURI: cfg.Database.URI,
		JWTSecret:   cfg.Auth.JWTSecret,
	})
	if !report.IsValid {
		return fmt.Errorf("environment invalid: %v", report.Errors)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logging.WithLogger(ctx, logger)

	db := dbconn.New[*mongostore.Conn](
		mongostore.Connector{AppName: cfg.App.Name + "-dbcheck"},
		dbconn.Settings{
			URI:                    cfg.Database.URI,
			Database:               cfg.Database.Name,
			ServerSelectionTimeout: cfg.Database.ServerSelectionTimeout,
			SocketTimeout:          cfg.Database.SocketTimeout,
			ConnectTimeout:         cfg.Database.ConnectTimeout,
			MaxPoolSize:            cfg.Database.MaxPoolSize,
			MinPoolSize:            cfg.Database.MinPoolSize,
		},
		dbconn.WithRetry(cfg.Database.MaxAttempts, cfg.Database.RetryInterval),
		dbconn.WithLogger(logger),
	)
	defer func() {
		if err := db.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("closing connection failed", slog.Any("error", err))
		}
	}()

	connectErr := db.Ready(ctx)

	status := dbconn.NewProber[*mongostore.Conn](db, cfg.Database.ProbeTimeout).Probe(ctx)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(status); err != nil {
		return fmt.Errorf("writing status: %w", err)
	}

	if connectErr != nil {
		return fmt.Errorf("connecting (%s): %w", dbconn.Classify(connectErr), connectErr)
	}
	if status.PingSucceeded == nil || !*status.PingSucceeded {
		return fmt.Errorf("ping failed: %s", status.PingError)
	}
	return nil
}
