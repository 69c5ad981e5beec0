package live

import (
	"errors"
	"fmt"
)

// Sentinel errors for the live layer.
var (
	// ErrSessionClosed is returned when operating on a closed session.
	ErrSessionClosed = errors.New("live: session closed")

	// ErrSessionNotFound is returned when a session ID has no live
	// session behind it.
	ErrSessionNotFound = errors.New("live: session not found")

	// ErrMaxSessionsReached is returned when the manager is at its
	// session limit.
	ErrMaxSessionsReached = errors.New("live: max sessions reached")

	// ErrNoConnection is returned when a write needs a socket and the
	// session is detached.
	ErrNoConnection = errors.New("live: no connection")

	// ErrOutboundFull is returned when a session's outbound queue is
	// full, which means the client has stopped draining frames.
	ErrOutboundFull = errors.New("live: outbound queue full")

	// ErrQueueOverflow is returned when a detached session accumulates
	// more unsent patches than its configured limit allows.
	ErrQueueOverflow = errors.New("live: patch queue overflow")

	// ErrHandshakeFailed is returned when a connection never completes
	// the protocol handshake.
	ErrHandshakeFailed = errors.New("live: handshake failed")

	// ErrServerClosed is returned by Run after a graceful shutdown.
	ErrServerClosed = errors.New("live: server closed")
)

// SessionError wraps an error with the session and operation it came
// from.
type SessionError struct {
	SessionID string
	Op        string
	Err       error
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return fmt.Sprintf("live: session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SessionError) Unwrap() error {
	return e.Err
}

func sessionErr(id, op string, err error) error {
	if err == nil {
		return nil
	}
	return &SessionError{SessionID: id, Op: op, Err: err}
}
