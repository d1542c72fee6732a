package dbconn_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/blog-platform-api/internal/platform/dbconn"
)

func TestProbe_DisconnectedDoesNotConnect(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sup := newSupervisor(connector, &sleepRecorder{})
	prober := dbconn.NewProber[*fakeConn](sup, time.Second)

	before := sup.State()
	for range 100 {
		status := prober.Probe(context.Background())

		assert.False(t, status.IsConnected)
		assert.Equal(t, "disconnected", status.ConnectionState)
		assert.Nil(t, status.PingSucceeded)
		assert.False(t, status.ObservedAt.IsZero())
	}

	assert.Equal(t, before, sup.State())
	assert.Equal(t, int32(0), connector.calls.Load())
}

func TestProbe_ConnectedPingsOnce(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sup := newSupervisor(connector, &sleepRecorder{})
	c, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)
	prober := dbconn.NewProber[*fakeConn](sup, time.Second)

	status := prober.Probe(context.Background())

	assert.True(t, status.IsConnected)
	assert.Equal(t, "connected", status.ConnectionState)
	assert.Equal(t, "blog-platform", status.DBName)
	assert.Equal(t, "db.example.test:27017", status.Host)
	require.NotNil(t, status.PingSucceeded)
	assert.True(t, *status.PingSucceeded)
	assert.Empty(t, status.PingError)
	// One ping at establishment, one for the probe.
	assert.Equal(t, int32(2), c.pings.Load())
}

func TestProbe_FailedPingLeavesStageAlone(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sup := newSupervisor(connector, &sleepRecorder{})
	c, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)
	c.setPingErr(errors.New("connection reset by peer"))
	prober := dbconn.NewProber[*fakeConn](sup, time.Second)

	before := sup.State()
	for range 100 {
		status := prober.Probe(context.Background())

		assert.True(t, status.IsConnected)
		require.NotNil(t, status.PingSucceeded)
		assert.False(t, *status.PingSucceeded)
		assert.Equal(t, "connection reset by peer", status.PingError)
	}

	assert.Equal(t, before, sup.State())
	assert.Equal(t, int32(1), connector.calls.Load())
}

func TestProbe_PingBoundedByTimeout(t *testing.T) {
	t.Parallel()

	connector := &fakeConnector{}
	sup := newSupervisor(connector, &sleepRecorder{})
	c, err := sup.EnsureConnected(context.Background())
	require.NoError(t, err)
	c.pingBlock = true
	prober := dbconn.NewProber[*fakeConn](sup, 20*time.Millisecond)

	start := time.Now()
	status := prober.Probe(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	require.NotNil(t, status.PingSucceeded)
	assert.False(t, *status.PingSucceeded)
	assert.Contains(t, status.PingError, "deadline exceeded")
	assert.Equal(t, dbconn.StageConnected, sup.State().Stage)
}
