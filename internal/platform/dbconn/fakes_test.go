package dbconn_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/platform/dbconn"
)

var errUnreachable = errors.New("server selection error: connection refused")

type fakeConn struct {
	id      int
	live    atomic.Bool
	closed  atomic.Bool
	pings   atomic.Int32
	pingErr atomic.Pointer[error]
	// pingBlock makes Ping wait for ctx to end.
	pingBlock bool

	mu   sync.Mutex
	subs []func(dbconn.Event)
}

func newFakeConn(id int) *fakeConn {
	c := &fakeConn{id: id}
	c.live.Store(true)
	return c
}

func (c *fakeConn) Live() bool { return c.live.Load() && !c.closed.Load() }

func (c *fakeConn) Ping(ctx context.Context) error {
	c.pings.Add(1)
	if c.pingBlock {
		<-ctx.Done()
		return ctx.Err()
	}
	if p := c.pingErr.Load(); p != nil {
		return *p
	}
	return nil
}

func (c *fakeConn) Close(context.Context) error {
	c.closed.Store(true)
	return nil
}

func (c *fakeConn) Subscribe(fn func(dbconn.Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

func (c *fakeConn) Database() string { return "blog-platform" }

func (c *fakeConn) Host() string { return "db.example.test:27017" }

func (c *fakeConn) setPingErr(err error) { c.pingErr.Store(&err) }

func (c *fakeConn) emit(ev dbconn.Event) {
	c.mu.Lock()
	subs := append([]func(dbconn.Event){}, c.subs...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// fakeConnector hands out fakeConns. The first failFirst calls fail with err.
// When release is non-nil every call waits on it first.
type fakeConnector struct {
	calls     atomic.Int32
	failFirst int32
	err       error
	release   chan struct{}

	mu    sync.Mutex
	conns []*fakeConn
}

func (f *fakeConnector) Connect(ctx context.Context, _ dbconn.Settings) (*fakeConn, error) {
	n := f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= f.failFirst {
		return nil, f.err
	}

	c := newFakeConn(int(n))
	f.mu.Lock()
	f.conns = append(f.conns, c)
	f.mu.Unlock()
	return c, nil
}

func (f *fakeConnector) conn(i int) *fakeConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conns[i]
}

// sleepRecorder records requested waits and returns immediately.
type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = append(r.waits, d)
	return nil
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}

func testSettings() dbconn.Settings {
	return dbconn.Settings{
		URI:                    "mongodb://db.example.test:27017",
		Database:               "blog-platform",
		ServerSelectionTimeout: time.Second,
		SocketTimeout:          time.Second,
		ConnectTimeout:         time.Second,
		MaxPoolSize:            10,
	}
}

func newSupervisor(conn *fakeConnector, sleeps *sleepRecorder, opts ...dbconn.Option) *dbconn.Supervisor[*fakeConn] {
	all := append([]dbconn.Option{
		dbconn.WithRetry(3, 2*time.Second),
		dbconn.WithSleep(sleeps.sleep),
	}, opts...)
	return dbconn.New[*fakeConn](conn, testSettings(), all...)
}
