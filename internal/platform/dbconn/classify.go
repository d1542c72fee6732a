package dbconn

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
)

// FailureKind classifies why an establishment failed.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureConfiguration
	FailureServerSelection
	FailureTimeout
	FailureHostNotFound
)

func (k FailureKind) String() string {
	switch k {
	case FailureConfiguration:
		return "configuration"
	case FailureServerSelection:
		return "server_selection"
	case FailureTimeout:
		return "timeout"
	case FailureHostNotFound:
		return "host_not_found"
	default:
		return "unknown"
	}
}

// DriverError is returned by Connector and Conn implementations to carry a
// driver-specific classification through the retry loop.
type DriverError struct {
	Kind FailureKind
	Err  error
}

func (e *DriverError) Error() string { return e.Err.Error() }

func (e *DriverError) Unwrap() error { return e.Err }

// Classify returns the most specific FailureKind for err.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}
	if errors.Is(err, domain.ErrConfiguration) {
		return FailureConfiguration
	}

	var de *DriverError
	if errors.As(err, &de) && de.Kind != FailureUnknown {
		return de.Kind
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return FailureHostNotFound
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrTimeout) {
		return FailureTimeout
	}

	msg := err.Error()
	if strings.Contains(msg, "ENOTFOUND") || strings.Contains(msg, "no such host") {
		return FailureHostNotFound
	}
	return FailureUnknown
}
