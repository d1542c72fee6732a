package dbconn_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/dbconn"
)

func TestEnsureConnected_JoinsSingleInFlightAttempt(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{release: make(chan struct{})}
	sup := newSupervisor(connector, &sleepRecorder{})

	const callers = 20
	results := make([]*fakeConn, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = sup.EnsureConnected(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return connector.calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.True(t, sup.State().InFlight)
	assert.Equal(t, dbconn.StageConnecting, sup.State().Stage)

	close(connector.release)
	wg.Wait()

	assert.Equal(t, int32(1), connector.calls.Load(), "connector calls")
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, dbconn.StageConnected, sup.State().Stage)
}

func TestEnsureConnected_ReusesLiveHandle(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sup := newSupervisor(connector, &sleepRecorder{})

	first, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)

	for range 5 {
		c, err := sup.EnsureConnected(context.Background())
		require.NoError(t, err)
		assert.Same(t, first, c)
	}

	assert.Equal(t, int32(1), connector.calls.Load())
	// The only round trip is the ping confirming the new handle.
	assert.Equal(t, int32(1), first.pings.Load())
}

func TestEnsureConnected_BoundedRetry(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{failFirst: 100, err: errUnreachable}
	sleeps := &sleepRecorder{}
	sup := newSupervisor(connector, sleeps)

	_, err := sup.EnsureConnected(context.Background())

	require.Error(t, err)
	var connErr *domain.ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, 3, connErr.Attempts)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.ErrorIs(t, err, errUnreachable)

	assert.Equal(t, int32(3), connector.calls.Load())
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleeps.recorded())

	state := sup.State()
	assert.Equal(t, dbconn.StageDisconnected, state.Stage)
	assert.Equal(t, 0, state.Attempts)
	assert.False(t, state.InFlight)
}

func TestEnsureConnected_FreshBudgetAfterTerminalFailure(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{failFirst: 3, err: errUnreachable}
	sleeps := &sleepRecorder{}
	sup := newSupervisor(connector, sleeps)

	_, err := sup.EnsureConnected(context.Background())
	require.Error(t, err)

	c, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, int32(4), connector.calls.Load())
}

func TestEnsureConnected_RecoversWithinBudget(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{failFirst: 2, err: errUnreachable}
	sleeps := &sleepRecorder{}
	sup := newSupervisor(connector, sleeps)

	c, err := sup.EnsureConnected(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, int32(3), connector.calls.Load())
	assert.Len(t, sleeps.recorded(), 2)
	assert.Equal(t, 0, sup.State().Attempts)
	assert.Equal(t, dbconn.StageConnected, sup.State().Stage)
}

func TestEnsureConnected_FailedPingCountsAsAttempt(t *testing.T) {
	t.Parallel()

	pingErr := errors.New("ping: server selection timeout")
	connector := &pingFailingConnector{err: pingErr}
	sleeps := &sleepRecorder{}
	sup := dbconn.New[*fakeConn](connector, testSettings(),
		dbconn.WithRetry(3, 2*time.Second), dbconn.WithSleep(sleeps.sleep))

	_, err := sup.EnsureConnected(context.Background())

	require.ErrorIs(t, err, pingErr)
	assert.Len(t, connector.conns, 3)
	for _, c := range connector.conns {
		assert.True(t, c.closed.Load(), "handle %d left open", c.id)
	}
}

func TestEnsureConnected_MissingURINeverRetried(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sleeps := &sleepRecorder{}
	settings := testSettings()
	settings.URI = ""
	sup := dbconn.New[*fakeConn](connector, settings, dbconn.WithSleep(sleeps.sleep))

	_, err := sup.EnsureConnected(context.Background())

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "MONGODB_URI", cfgErr.Setting)
	assert.Equal(t, int32(0), connector.calls.Load())
	assert.Empty(t, sleeps.recorded())
	assert.Equal(t, dbconn.StageDisconnected, sup.State().Stage)
}

func TestEnsureConnected_DriverConfigurationErrorNotRetried(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{
		failFirst: 100,
		err:       &domain.ConfigurationError{Setting: "MONGODB_URI", Reason: "has an unsupported scheme"},
	}
	sleeps := &sleepRecorder{}
	sup := newSupervisor(connector, sleeps)

	_, err := sup.EnsureConnected(context.Background())

	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, int32(1), connector.calls.Load())
	assert.Empty(t, sleeps.recorded())
}

func TestEnsureConnected_CallerCancelDoesNotAbortEstablishment(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{release: make(chan struct{})}
	sup := newSupervisor(connector, &sleepRecorder{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := sup.EnsureConnected(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool { return connector.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(connector.release)
	require.Eventually(t, func() bool { return sup.State().Connected() }, time.Second, time.Millisecond)

	_, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), connector.calls.Load())
}

func TestEnsureConnected_JoinersShareTerminalFailure(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{failFirst: 100, err: errUnreachable, release: make(chan struct{})}
	sup := newSupervisor(connector, &sleepRecorder{})

	const callers = 5
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = sup.EnsureConnected(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return connector.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(connector.release)
	wg.Wait()

	assert.Equal(t, int32(3), connector.calls.Load())
	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	}
}

func TestDisconnectEvent_DemotesAndNextCallReconnects(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sup := newSupervisor(connector, &sleepRecorder{})

	first, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)

	first.emit(dbconn.Event{Kind: dbconn.EventDisconnected})

	assert.Equal(t, dbconn.StageDisconnected, sup.State().Stage)
	// The listener only demotes; it never connects on its own.
	assert.Equal(t, int32(1), connector.calls.Load())

	second, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), connector.calls.Load())
	assert.True(t, first.closed.Load(), "stale handle should be closed")
}

func TestDisconnectEvent_StaleHandleIgnored(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sup := newSupervisor(connector, &sleepRecorder{})

	first, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)
	_, err = sup.Reconnect(context.Background())
	require.NoError(t, err)

	first.emit(dbconn.Event{Kind: dbconn.EventError, Err: errors.New("pool cleared")})

	assert.Equal(t, dbconn.StageConnected, sup.State().Stage)
}

func TestEnsureConnected_DeadHandleReplaced(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sup := newSupervisor(connector, &sleepRecorder{})

	first, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)
	first.live.Store(false)

	second, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.True(t, first.closed.Load())
}

func TestReconnect_ReplacesHandle(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sup := newSupervisor(connector, &sleepRecorder{})

	first, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)

	second, err := sup.Reconnect(context.Background())

	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.True(t, first.closed.Load())
	assert.Equal(t, dbconn.StageConnected, sup.State().Stage)
}

func TestReconnect_FromDisconnected(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sup := newSupervisor(connector, &sleepRecorder{})

	c, err := sup.Reconnect(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, int32(1), connector.calls.Load())
}

func TestClose_ReleasesHandle(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sup := newSupervisor(connector, &sleepRecorder{})

	c, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)

	require.NoError(t, sup.Close(context.Background()))

	assert.True(t, c.closed.Load())
	assert.Equal(t, dbconn.StageDisconnected, sup.State().Stage)
	_, ok := sup.Current()
	assert.False(t, ok)
}

func TestClose_DuringEstablishmentReleasesLateHandle(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{release: make(chan struct{})}
	sup := newSupervisor(connector, &sleepRecorder{})

	errc := make(chan error, 1)
	go func() {
		_, err := sup.EnsureConnected(context.Background())
		errc <- err
	}()
	require.Eventually(t, func() bool {
		return connector.calls.Load() == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, sup.Close(context.Background()))
	close(connector.release)

	err := <-errc
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.True(t, connector.conn(0).closed.Load(), "handle opened after Close must be released")
	assert.Equal(t, dbconn.StageDisconnected, sup.State().Stage)
	_, ok := sup.Current()
	assert.False(t, ok)

	c, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)
	assert.False(t, c.closed.Load())
	assert.Equal(t, int32(2), connector.calls.Load())
}

func TestClose_DuringEstablishmentStopsRetrying(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{failFirst: 3, err: errUnreachable}
	var sup *dbconn.Supervisor[*fakeConn]
	closeOnFirstWait := func(ctx context.Context, _ time.Duration) error {
		return sup.Close(ctx)
	}
	sup = dbconn.New[*fakeConn](connector, testSettings(),
		dbconn.WithRetry(3, 2*time.Second),
		dbconn.WithSleep(closeOnFirstWait),
	)

	_, err := sup.EnsureConnected(context.Background())

	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Equal(t, int32(2), connector.calls.Load())
	assert.Equal(t, dbconn.StageDisconnected, sup.State().Stage)
}

func TestState_ReportsHandleDetailsOnlyWhenConnected(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sup := newSupervisor(connector, &sleepRecorder{})

	assert.Equal(t, dbconn.Snapshot{Stage: dbconn.StageDisconnected}, sup.State())

	_, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)

	state := sup.State()
	assert.Equal(t, "blog-platform", state.Database)
	assert.Equal(t, "db.example.test:27017", state.Host)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sup := newSupervisor(connector, &sleepRecorder{})

	assert.Equal(t, "mongodb", sup.Name())
	require.ErrorIs(t, sup.HealthCheck(context.Background()), domain.ErrUnavailable)
	assert.Equal(t, int32(0), connector.calls.Load(), "health check must not connect")

	_, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)
	assert.NoError(t, sup.HealthCheck(context.Background()))
}

func TestStage_String(t *testing.T) {
	t.Parallel()

	tests := map[dbconn.Stage]string{
		dbconn.StageDisconnected:  "disconnected",
		dbconn.StageConnected:     "connected",
		dbconn.StageConnecting:    "connecting",
		dbconn.StageDisconnecting: "disconnecting",
		dbconn.Stage(99):          "uninitialized",
	}
	for stage, want := range tests {
		assert.Equal(t, want, stage.String())
	}
}

// pingFailingConnector opens handles whose ping always fails.
type pingFailingConnector struct {
	err   error
	conns []*fakeConn
}

func (p *pingFailingConnector) Connect(context.Context, dbconn.Settings) (*fakeConn, error) {
	c := newFakeConn(len(p.conns) + 1)
	c.setPingErr(p.err)
	p.conns = append(p.conns, c)
	return c, nil
}
