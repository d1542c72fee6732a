// Package mongostore adapts the MongoDB driver to the connection supervisor
// and implements the repository ports on top of it.
package mongostore

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/v2/event"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/dbconn"
)

// poolClearedEvent is the PoolEvent type the driver raises when a network
// error invalidates every pooled connection to a server.
const poolClearedEvent = "ConnectionPoolCleared"

// Compile-time interface checks.
var (
	_ dbconn.Conn             = (*Conn)(nil)
	_ dbconn.Connector[*Conn] = Connector{}
)

// Connector opens driver clients configured from dbconn.Settings.
type Connector struct {
	// AppName is reported to the server in the handshake.
	AppName string
}

// Connect creates a client. The driver connects lazily, so reachability is
// established by the supervisor's ping.
func (c Connector) Connect(_ context.Context, s dbconn.Settings) (*Conn, error) {
	conn := newConn(s)

	opts := options.Client().
		ApplyURI(s.URI).
		SetAppName(c.AppName).
		SetServerSelectionTimeout(s.ServerSelectionTimeout).
		SetConnectTimeout(s.ConnectTimeout).
		SetTimeout(s.SocketTimeout).
		SetMaxPoolSize(s.MaxPoolSize).
		SetMinPoolSize(s.MinPoolSize).
		SetServerMonitor(conn.serverMonitor()).
		SetPoolMonitor(conn.poolMonitor())

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, classifyConnectError(err)
	}

	conn.client = client
	conn.db = client.Database(s.Database)
	return conn, nil
}

// Conn is a driver client bound to one database. It implements dbconn.Conn.
type Conn struct {
	client *mongo.Client
	db     *mongo.Database
	dbName string

	configuredHost string
	discovered     atomic.Pointer[string]
	// reachable turns false when every known server becomes unknown after
	// one had been seen.
	reachable atomic.Bool
	seen      atomic.Bool
	closed    atomic.Bool

	indexes indexGuard

	mu   sync.Mutex
	subs []func(dbconn.Event)
}

func newConn(s dbconn.Settings) *Conn {
	c := &Conn{dbName: s.Database, configuredHost: hostFromURI(s.URI)}
	c.reachable.Store(true)
	return c
}

// DB returns the driver database handle.
func (c *Conn) DB() *mongo.Database { return c.db }

// Live implements dbconn.Conn.
func (c *Conn) Live() bool {
	return !c.closed.Load() && c.reachable.Load()
}

// Ping implements dbconn.Conn.
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return classifyDriverError(err)
	}
	return nil
}

// Close implements dbconn.Conn.
func (c *Conn) Close(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := c.client.Disconnect(ctx)
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return nil
	}
	return err
}

// Subscribe implements dbconn.Conn.
func (c *Conn) Subscribe(fn func(dbconn.Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Database implements dbconn.Conn.
func (c *Conn) Database() string { return c.dbName }

// Host implements dbconn.Conn. It prefers the address of a server the
// driver actually reached over the host named in the URI.
func (c *Conn) Host() string {
	if h := c.discovered.Load(); h != nil {
		return *h
	}
	return c.configuredHost
}

func (c *Conn) emit(ev dbconn.Event) {
	c.mu.Lock()
	subs := make([]func(dbconn.Event), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func (c *Conn) serverMonitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		TopologyDescriptionChanged: c.onTopologyChanged,
		TopologyClosed: func(*event.TopologyClosedEvent) {
			c.reachable.Store(false)
			c.emit(dbconn.Event{Kind: dbconn.EventClosed})
		},
	}
}

func (c *Conn) poolMonitor() *event.PoolMonitor {
	return &event.PoolMonitor{
		Event: c.onPoolEvent,
	}
}

func (c *Conn) onTopologyChanged(ev *event.TopologyDescriptionChangedEvent) {
	for _, srv := range ev.NewDescription.Servers {
		if srv.Kind != "" && srv.Kind != "Unknown" {
			addr := string(srv.Addr)
			c.discovered.Store(&addr)
			c.seen.Store(true)
			c.reachable.Store(true)
			return
		}
	}

	if c.seen.Load() && c.reachable.CompareAndSwap(true, false) {
		c.emit(dbconn.Event{Kind: dbconn.EventDisconnected})
	}
}

func (c *Conn) onPoolEvent(ev *event.PoolEvent) {
	if ev.Type != poolClearedEvent {
		return
	}
	c.emit(dbconn.Event{Kind: dbconn.EventError, Err: ev.Error})
}

// hostFromURI returns the host list of a connection string without its
// credentials, or "" when it cannot be parsed.
func hostFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return u.Host
}

// classifyConnectError maps errors raised before any network I/O. Those are
// problems with the connection string itself, except for SRV lookups.
func classifyConnectError(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &dbconn.DriverError{Kind: dbconn.FailureHostNotFound, Err: err}
	}
	return &domain.ConfigurationError{Setting: "MONGODB_URI", Reason: err.Error()}
}

// classifyDriverError tags a driver error with the reason the connection
// failed so the request gate can answer precisely.
func classifyDriverError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such host"):
		return &dbconn.DriverError{Kind: dbconn.FailureHostNotFound, Err: err}
	case strings.Contains(msg, "server selection"):
		return &dbconn.DriverError{Kind: dbconn.FailureServerSelection, Err: err}
	case mongo.IsTimeout(err):
		return &dbconn.DriverError{Kind: dbconn.FailureTimeout, Err: err}
	default:
		return &dbconn.DriverError{Kind: dbconn.FailureUnknown, Err: err}
	}
}
