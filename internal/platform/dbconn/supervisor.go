// Package dbconn supervises the service's single connection to the document
// store. The Supervisor is the only writer of connection state: it reuses a
// live handle, joins callers onto one in-flight establishment, retries a
// bounded number of times at a fixed interval and demotes itself when the
// driver reports a disconnect. The Prober reads that state for diagnostics
// without ever changing it.
package dbconn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/logging"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/telemetry"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

const (
	// DefaultMaxAttempts is the number of connection attempts made before
	// an establishment fails.
	DefaultMaxAttempts = 3
	// DefaultRetryInterval is the fixed wait between attempts.
	DefaultRetryInterval = 2 * time.Second

	flightKey    = "connect"
	closeTimeout = 10 * time.Second
)

var errClosedWhileConnecting = fmt.Errorf("%w: database closed while connecting", domain.ErrUnavailable)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures a Supervisor.
type Option func(*options)

type options struct {
	maxAttempts int
	interval    time.Duration
	sleep       SleepFunc
	logger      *slog.Logger
	metrics     *telemetry.Metrics
}

// WithRetry sets the attempt budget and the fixed wait between attempts.
// Values below one attempt are raised to one.
func WithRetry(maxAttempts int, interval time.Duration) Option {
	return func(o *options) {
		o.maxAttempts = max(maxAttempts, 1)
		o.interval = interval
	}
}

// WithSleep replaces the wait between attempts. Tests use it to observe
// retry timing without waiting.
func WithSleep(fn SleepFunc) Option {
	return func(o *options) {
		o.sleep = fn
	}
}

// WithLogger sets the fallback logger used when the caller's context
// carries none.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records connection attempts and durations.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Supervisor owns the connection state. The zero value is not usable; create
// one with New.
type Supervisor[C Conn] struct {
	connector Connector[C]
	settings  Settings
	opts      options

	flight singleflight.Group

	mu       sync.Mutex
	stage    Stage
	conn     C
	hasConn  bool
	attempts int
	// closing is set when Close runs during an establishment; the handle
	// that establishment produces is closed instead of adopted.
	closing bool
	// generation identifies the current handle so that events raised by a
	// handle that was already replaced are ignored.
	generation uint64
}

var _ ports.HealthChecker = (*Supervisor[Conn])(nil)

// New creates a Supervisor in StageDisconnected. It does not connect.
func New[C Conn](connector Connector[C], settings Settings, opts ...Option) *Supervisor[C] {
	o := options{
		maxAttempts: DefaultMaxAttempts,
		interval:    DefaultRetryInterval,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Supervisor[C]{
		connector: connector,
		settings:  settings,
		opts:      o,
	}
}

// EnsureConnected returns a live handle, establishing one if needed.
//
// A cached live handle is returned without network I/O. Otherwise the caller
// joins the single in-flight establishment, starting it if none is running.
// If ctx ends first the caller gets ctx.Err() but the establishment carries
// on for the remaining callers.
func (s *Supervisor[C]) EnsureConnected(ctx context.Context) (C, error) {
	if c, ok := s.cached(); ok {
		return c, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(flightKey, func() (any, error) {
		return s.establish(detached)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero C
			return zero, res.Err
		}
		return res.Val.(C), nil
	case <-ctx.Done():
		var zero C
		return zero, ctx.Err()
	}
}

// Reconnect tears down the current handle and establishes a new one. If an
// establishment is already running the caller joins it instead.
func (s *Supervisor[C]) Reconnect(ctx context.Context) (C, error) {
	s.mu.Lock()
	if s.stage == StageConnecting {
		s.mu.Unlock()
		return s.EnsureConnected(ctx)
	}
	s.mu.Unlock()

	s.teardown(ctx)

	return s.EnsureConnected(ctx)
}

// Close releases the current handle. When an establishment is running, the
// handle it produces is closed as soon as it arrives and its callers get
// ErrUnavailable. A later EnsureConnected connects again.
func (s *Supervisor[C]) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.stage == StageConnecting {
		s.closing = true
	}
	s.mu.Unlock()

	return s.teardown(ctx)
}

// Ready is EnsureConnected for callers that only need to know whether the
// store is reachable.
func (s *Supervisor[C]) Ready(ctx context.Context) error {
	_, err := s.EnsureConnected(ctx)
	return err
}

// Refresh is Reconnect without the handle.
func (s *Supervisor[C]) Refresh(ctx context.Context) error {
	_, err := s.Reconnect(ctx)
	return err
}

// State returns a snapshot of the connection state.
func (s *Supervisor[C]) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Stage:    s.stage,
		Attempts: s.attempts,
		InFlight: s.stage == StageConnecting,
	}
	if s.stage == StageConnected && s.hasConn {
		snap.Database = s.conn.Database()
		snap.Host = s.conn.Host()
	}
	return snap
}

// Current returns the cached handle when connected, without connecting.
func (s *Supervisor[C]) Current() (C, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageConnected || !s.hasConn {
		var zero C
		return zero, false
	}
	return s.conn, true
}

// Name implements ports.HealthChecker.
func (s *Supervisor[C]) Name() string { return "mongodb" }

// HealthCheck pings the current handle. It reports unavailability instead of
// connecting so that readiness probes never trigger an establishment.
func (s *Supervisor[C]) HealthCheck(ctx context.Context) error {
	c, ok := s.Current()
	if !ok {
		return fmt.Errorf("%w: database %s", domain.ErrUnavailable, s.State().Stage)
	}
	return c.Ping(ctx)
}

func (s *Supervisor[C]) cached() (C, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage == StageConnected && s.hasConn && s.conn.Live() {
		return s.conn, true
	}
	var zero C
	return zero, false
}

// establish runs inside the single flight. ctx is detached from any caller.
func (s *Supervisor[C]) establish(ctx context.Context) (C, error) {
	var zero C
	logger := s.logger(ctx)

	// A previous flight may have finished between the caller's fast-path
	// check and this flight starting.
	if c, ok := s.cached(); ok {
		return c, nil
	}

	stale, hadStale := s.begin()
	if hadStale {
		s.closeHandle(ctx, stale)
	}

	if err := s.settings.Validate(); err != nil {
		s.fail()
		logger.ErrorContext(ctx, "database configuration invalid", slog.Any("error", err))
		return zero, err
	}

	start := time.Now()
	policy := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(s.opts.interval),
		uint64(s.opts.maxAttempts-1),
	)

	for attempt := 1; ; attempt++ {
		logger.InfoContext(ctx, "connecting to database",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", s.opts.maxAttempts),
		)

		c, err := s.connectOnce(ctx)
		if err == nil && !s.adopt(c) {
			s.closeHandle(ctx, c)
			s.recordDuration(ctx, start, "closed")
			logger.InfoContext(ctx, "database closed during connection, handle released")
			return zero, errClosedWhileConnecting
		}
		if err == nil {
			s.recordAttempt(ctx, "success")
			s.recordDuration(ctx, start, "success")
			logger.InfoContext(ctx, "database connected",
				slog.String("db_name", c.Database()),
				slog.String("host", c.Host()),
				slog.Int("attempt", attempt),
			)
			return c, nil
		}

		s.recordAttempt(ctx, "failure")
		failed := s.countFailure()

		if errors.Is(err, domain.ErrConfiguration) {
			s.fail()
			s.recordDuration(ctx, start, "failure")
			logger.ErrorContext(ctx, "database configuration rejected by driver", slog.Any("error", err))
			return zero, err
		}

		// WithMaxRetries treats a zero budget as unlimited, so the attempt
		// count is checked as well.
		wait := policy.NextBackOff()
		if failed >= s.opts.maxAttempts || wait == backoff.Stop {
			s.fail()
			s.recordDuration(ctx, start, "failure")
			logger.ErrorContext(ctx, "database connection failed",
				slog.Int("attempts", failed),
				slog.Any("error", err),
			)
			return zero, &domain.ConnectivityError{Attempts: failed, Err: err}
		}

		if s.closeRequested() {
			s.fail()
			s.recordDuration(ctx, start, "closed")
			return zero, errClosedWhileConnecting
		}

		logger.WarnContext(ctx, "database connection attempt failed, retrying",
			slog.Int("attempt", failed),
			slog.Duration("retry_in", wait),
			slog.Any("error", err),
		)
		if err := s.opts.sleep(ctx, wait); err != nil {
			s.fail()
			return zero, &domain.ConnectivityError{Attempts: failed, Err: err}
		}
	}
}

// connectOnce opens a handle and confirms it with a ping. A handle that
// fails its ping is closed again.
func (s *Supervisor[C]) connectOnce(ctx context.Context) (C, error) {
	var zero C

	c, err := s.connector.Connect(ctx, s.settings)
	if err != nil {
		return zero, err
	}

	if err := c.Ping(ctx); err != nil {
		s.closeHandle(ctx, c)
		return zero, err
	}
	return c, nil
}

// begin moves to StageConnecting and detaches any stale handle.
func (s *Supervisor[C]) begin() (C, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stale, had := s.conn, s.hasConn
	var zero C
	s.conn, s.hasConn = zero, false
	s.stage = StageConnecting
	return stale, had
}

// adopt makes c the current handle. It reports false, leaving c to the
// caller, when Close ran while c was being established.
func (s *Supervisor[C]) adopt(c C) bool {
	s.mu.Lock()
	if s.closing {
		s.closing = false
		s.stage = StageDisconnected
		s.attempts = 0
		s.mu.Unlock()
		return false
	}
	s.conn, s.hasConn = c, true
	s.stage = StageConnected
	s.attempts = 0
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	c.Subscribe(func(ev Event) { s.onEvent(gen, ev) })
	return true
}

func (s *Supervisor[C]) closeRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closing
}

func (s *Supervisor[C]) countFailure() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts++
	return s.attempts
}

// fail ends an establishment without a handle.
func (s *Supervisor[C]) fail() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stage = StageDisconnected
	s.attempts = 0
	s.closing = false
}

// onEvent demotes the state when the current handle reports trouble. It
// never reconnects; the next EnsureConnected does. The handle itself is kept
// so the next establishment can close it.
func (s *Supervisor[C]) onEvent(gen uint64, ev Event) {
	s.mu.Lock()
	if gen != s.generation || s.stage != StageConnected {
		s.mu.Unlock()
		return
	}
	s.stage = StageDisconnected
	s.mu.Unlock()

	ctx := context.Background()
	if s.opts.metrics != nil {
		s.opts.metrics.DBDisconnects.Add(ctx, 1,
			metric.WithAttributes(attribute.String("event", ev.Kind.String())))
	}
	s.logger(ctx).WarnContext(ctx, "database connection lost",
		slog.String("event", ev.Kind.String()),
		slog.Any("error", ev.Err),
	)
}

func (s *Supervisor[C]) teardown(ctx context.Context) error {
	s.mu.Lock()
	if s.stage == StageConnecting {
		s.mu.Unlock()
		return nil
	}
	old, had := s.conn, s.hasConn
	var zero C
	s.conn, s.hasConn = zero, false
	s.stage = StageDisconnecting
	s.generation++
	s.mu.Unlock()

	var err error
	if had {
		err = s.closeHandle(ctx, old)
	}

	s.mu.Lock()
	if s.stage == StageDisconnecting {
		s.stage = StageDisconnected
	}
	s.mu.Unlock()

	return err
}

func (s *Supervisor[C]) closeHandle(ctx context.Context, c C) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	if err := c.Close(ctx); err != nil {
		s.logger(ctx).WarnContext(ctx, "closing database handle failed", slog.Any("error", err))
		return fmt.Errorf("closing database handle: %w", err)
	}
	return nil
}

func (s *Supervisor[C]) logger(ctx context.Context) *slog.Logger {
	if l := logging.FromContext(ctx); l != slog.Default() || s.opts.logger == nil {
		return l
	}
	return s.opts.logger
}

func (s *Supervisor[C]) recordAttempt(ctx context.Context, result string) {
	if s.opts.metrics == nil {
		return
	}
	s.opts.metrics.DBConnectAttempts.Add(ctx, 1, metric.WithAttributes(
		telemetry.AttrResult.String(result),
		telemetry.AttrDBName.String(s.settings.Database),
	))
}

func (s *Supervisor[C]) recordDuration(ctx context.Context, start time.Time, result string) {
	if s.opts.metrics == nil {
		return
	}
	s.opts.metrics.DBConnectDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		telemetry.AttrResult.String(result),
	))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
