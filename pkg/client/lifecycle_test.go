package client

import (
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnFSMPushHappyPath(t *testing.T) {
	f := newConnFSM(slog.Disabled)
	require.Equal(t, StateDisconnected, f.current())

	assert.True(t, f.to(StateConnecting))
	assert.True(t, f.to(StateHandshaking))
	assert.True(t, f.to(StateConnected))
	assert.True(t, f.to(StateReconnecting))
	assert.True(t, f.to(StateConnecting))
	assert.True(t, f.to(StateHandshaking))
	assert.True(t, f.to(StateConnected))
	assert.True(t, f.to(StateDisconnected))
}

func TestConnFSMPollingSkipsHandshaking(t *testing.T) {
	f := newConnFSM(slog.Disabled)
	assert.True(t, f.to(StateConnecting))
	assert.True(t, f.to(StateConnected))
}

func TestConnFSMRefusesInvalidTransitions(t *testing.T) {
	f := newConnFSM(slog.Disabled)

	// Cannot skip CONNECTING.
	assert.False(t, f.to(StateConnected))
	assert.False(t, f.to(StateHandshaking))
	assert.Equal(t, StateDisconnected, f.current())

	// Degraded is only reachable from a failed reconnect.
	require.True(t, f.to(StateConnecting))
	assert.False(t, f.to(StateDegraded))
	require.True(t, f.to(StateConnected))
	assert.False(t, f.to(StateDegraded))
}

func TestConnFSMDegradedIsTerminalUntilLeave(t *testing.T) {
	f := newConnFSM(slog.Disabled)
	require.True(t, f.to(StateConnecting))
	require.True(t, f.to(StateReconnecting))
	require.True(t, f.to(StateDegraded))

	// No path back to a live session.
	assert.False(t, f.to(StateConnecting))
	assert.False(t, f.to(StateReconnecting))
	assert.False(t, f.to(StateConnected))

	assert.True(t, f.to(StateDisconnected))
}

func TestConnFSMSelfTransitionIsNoop(t *testing.T) {
	f := newConnFSM(slog.Disabled)
	require.True(t, f.to(StateConnecting))
	assert.True(t, f.to(StateConnecting))
	assert.Equal(t, StateConnecting, f.current())
}

func TestConnFSMIs(t *testing.T) {
	f := newConnFSM(slog.Disabled)
	assert.True(t, f.is(StateDisconnected))
	assert.False(t, f.is(StateConnected, StateConnecting))
	require.True(t, f.to(StateConnecting))
	assert.True(t, f.is(StateConnected, StateConnecting))
}
