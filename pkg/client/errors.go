package client

import (
	"errors"
	"fmt"
)

// ErrReconnectExhausted is reported by the push strategy after the bounded
// reconnect attempts are used up; the session falls back to degraded mode
// and no further automatic attempts are made.
var ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

// ValidationError is a client-detected illegal action. The action was never
// sent to the server.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action: %s", e.Reason)
}

// RejectedError is a server-declined action. The action was well-formed and
// delivered; Reason carries the server's explanation for user display.
type RejectedError struct {
	Code   string
	Reason string
}

func (e *RejectedError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("rejected by server (%s): %s", e.Code, e.Reason)
	}
	return fmt.Sprintf("rejected by server: %s", e.Reason)
}

// TransportError is a connection failure, timeout, or malformed response.
// Op names the operation that failed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
