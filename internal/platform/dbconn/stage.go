package dbconn

// Stage is the lifecycle stage of the supervised connection.
type Stage int

const (
	StageDisconnected Stage = iota
	StageConnected
	StageConnecting
	StageDisconnecting
)

func (s Stage) String() string {
	switch s {
	case StageDisconnected:
		return "disconnected"
	case StageConnected:
		return "connected"
	case StageConnecting:
		return "connecting"
	case StageDisconnecting:
		return "disconnecting"
	default:
		return "uninitialized"
	}
}

// Snapshot is a point-in-time copy of the supervisor's state.
type Snapshot struct {
	Stage Stage
	// Attempts is the number of failed attempts in the current
	// establishment. It is reset to zero on success and on terminal failure.
	Attempts int
	// InFlight is true while an establishment is running.
	InFlight bool
	// Database and Host are set only while connected.
	Database string
	Host     string
}

// Connected reports whether the snapshot was taken in StageConnected.
func (s Snapshot) Connected() bool {
	return s.Stage == StageConnected
}
