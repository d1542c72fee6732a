package dbconn

import (
	"context"
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
)

// EventKind distinguishes transport notifications raised by a live handle.
type EventKind int

const (
	// EventError reports a transport error; the pool was cleared.
	EventError EventKind = iota
	// EventDisconnected reports that no server is reachable any more.
	EventDisconnected
	// EventClosed reports that the handle was closed.
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventError:
		return "error"
	case EventDisconnected:
		return "disconnected"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers of a Conn.
type Event struct {
	Kind EventKind
	Err  error
}

// Conn is a live handle to the document store.
type Conn interface {
	// Live reports whether the handle still believes it can serve
	// operations. It must not perform network I/O.
	Live() bool

	// Ping performs one round trip to the server.
	Ping(ctx context.Context) error

	// Close releases the handle and its pool.
	Close(ctx context.Context) error

	// Subscribe registers fn for transport events. fn may be called from
	// driver goroutines and must not block.
	Subscribe(fn func(Event))

	// Database is the name of the database the handle is bound to.
	Database() string

	// Host describes the server the handle reached (host:port).
	Host() string
}

// Connector opens handles. Implementations return a *domain.ConfigurationError
// for settings the driver rejects outright, which stops the retry loop.
type Connector[C Conn] interface {
	Connect(ctx context.Context, s Settings) (C, error)
}

// Settings are the connection parameters handed to a Connector.
type Settings struct {
	URI                    string
	Database               string
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
	ConnectTimeout         time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
}

// Validate reports settings that no number of retries can fix.
func (s Settings) Validate() error {
	if s.URI == "" {
		return &domain.ConfigurationError{Setting: "MONGODB_URI", Reason: "environment variable is not defined"}
	}
	if s.Database == "" {
		return &domain.ConfigurationError{Setting: "database.name", Reason: "must not be empty"}
	}
	return nil
}
