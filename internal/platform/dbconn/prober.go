package dbconn

import (
	"context"
	"time"
)

// DefaultProbeTimeout bounds the single ping issued by a probe.
const DefaultProbeTimeout = 5 * time.Second

// HealthStatus is a fresh observation of the connection. Optional fields are
// omitted when they do not apply.
type HealthStatus struct {
	IsConnected     bool      `json:"isConnected"`
	ConnectionState string    `json:"connectionState"`
	DBName          string    `json:"dbName,omitempty"`
	Host            string    `json:"host,omitempty"`
	PingSucceeded   *bool     `json:"pingSuccess,omitempty"`
	PingError       string    `json:"pingError,omitempty"`
	ObservedAt      time.Time `json:"timestamp"`
}

// StateSource is the read side of a Supervisor.
type StateSource[C Conn] interface {
	State() Snapshot
	Current() (C, bool)
}

// Prober reports connection health without changing it.
type Prober[C Conn] struct {
	source  StateSource[C]
	timeout time.Duration
	now     func() time.Time
}

// NewProber creates a Prober over source. A non-positive timeout selects
// DefaultProbeTimeout.
func NewProber[C Conn](source StateSource[C], timeout time.Duration) *Prober[C] {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober[C]{source: source, timeout: timeout, now: time.Now}
}

// Probe observes the connection. When connected it issues one ping bounded
// by the probe timeout; a failed ping is recorded in the result and leaves
// the lifecycle stage alone. Probe never fails.
func (p *Prober[C]) Probe(ctx context.Context) HealthStatus {
	snap := p.source.State()

	status := HealthStatus{
		IsConnected:     snap.Connected(),
		ConnectionState: snap.Stage.String(),
		DBName:          snap.Database,
		Host:            snap.Host,
		ObservedAt:      p.now().UTC(),
	}

	if !status.IsConnected {
		return status
	}

	c, ok := p.source.Current()
	if !ok {
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	succeeded := true
	if err := c.Ping(pingCtx); err != nil {
		succeeded = false
		status.PingError = err.Error()
	}
	status.PingSucceeded = &succeeded

	return status
}
