package client

import (
	"sync"

	"github.com/decred/slog"
)

// ConnState is the shared connection lifecycle state across both transport
// strategies.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateHandshaking
	StateConnected
	StateReconnecting
	StateDegraded
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateHandshaking:
		return "HANDSHAKING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateDegraded:
		return "DEGRADED"
	}
	return "UNKNOWN"
}

// validTransitions is the lifecycle contract of §connection management:
// DISCONNECTED → CONNECTING → (HANDSHAKING →) CONNECTED → (RECONNECTING |
// DEGRADED) → DISCONNECTED. The polling strategy skips HANDSHAKING.
var validTransitions = map[ConnState][]ConnState{
	StateDisconnected: {StateConnecting},
	StateConnecting:   {StateHandshaking, StateConnected, StateReconnecting, StateDisconnected},
	StateHandshaking:  {StateConnected, StateReconnecting, StateDisconnected},
	StateConnected:    {StateReconnecting, StateDisconnected},
	StateReconnecting: {StateConnecting, StateDegraded, StateDisconnected},
	StateDegraded:     {StateDisconnected},
}

// connFSM is the mutex-guarded lifecycle state machine. All transitions are
// explicit events; an attempt outside the contract is logged and refused so
// a stray timer callback cannot drag a closed transport back to life.
type connFSM struct {
	mu    sync.Mutex
	state ConnState
	log   slog.Logger
}

func newConnFSM(log slog.Logger) *connFSM {
	return &connFSM{state: StateDisconnected, log: log}
}

// current returns the current state.
func (f *connFSM) current() ConnState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// to attempts the transition and reports whether it was taken.
func (f *connFSM) to(next ConnState) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == next {
		return true
	}
	for _, allowed := range validTransitions[f.state] {
		if allowed == next {
			f.log.Debugf("connection state %s -> %s", f.state, next)
			f.state = next
			return true
		}
	}
	f.log.Warnf("refused connection state transition %s -> %s", f.state, next)
	return false
}

// is reports whether the machine is in any of the given states.
func (f *connFSM) is(states ...ConnState) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range states {
		if f.state == s {
			return true
		}
	}
	return false
}
