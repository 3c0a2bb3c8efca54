package client

import (
	"context"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wepoker/tablesync/pkg/gamestate"
	"github.com/wepoker/tablesync/pkg/protocol"
)

type fakeTransport struct {
	sent  []protocol.OutboundAction
	err   error
	state ConnState
}

func (f *fakeTransport) Connect(ctx context.Context) error { return nil }
func (f *fakeTransport) SendAction(ctx context.Context, a protocol.OutboundAction) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, a)
	return nil
}
func (f *fakeTransport) StartGame(ctx context.Context) error        { return nil }
func (f *fakeTransport) Rebuy(ctx context.Context, amt int64) error { return nil }
func (f *fakeTransport) State() ConnState                           { return f.state }
func (f *fakeTransport) Close() error                               { return nil }

func seatPtr(n int) *int { return &n }

// dispatchFixture seats the viewer with the given stack, facing a standing
// street bet of 1000 on the flop with a reported pot of 1500.
func dispatchFixture(t *testing.T, stack int64) (*Dispatcher, *fakeTransport) {
	t.Helper()
	store := gamestate.NewStore("p1", 7)
	rec := gamestate.NewReconciler(store, slog.Disabled)
	rec.ApplySnapshot(&protocol.TableSnapshot{
		State:                protocol.StateFlop,
		TotalPotSize:         1500,
		CurrentBetThisStreet: 1000,
		NextToActSeat:        seatPtr(0),
		BigBlindAmount:       1000,
		SmallBlindAmount:     500,
		Players: map[string]protocol.PlayerView{
			"p1": {PlayerID: "p1", Nickname: "alice", StackSize: stack,
				SeatNumber: seatPtr(0), Status: protocol.StatusActive},
			"p2": {PlayerID: "p2", Nickname: "bob", StackSize: 50000,
				SeatNumber: seatPtr(1), Status: protocol.StatusActive, CurrentBet: 1000},
		},
	})
	ft := &fakeTransport{state: StateConnected}
	return NewDispatcher(store, ft, slog.Disabled), ft
}

func TestDispatchUnknownKind(t *testing.T) {
	d, ft := dispatchFixture(t, 20000)
	err := d.Dispatch(context.Background(), protocol.ActionKind("SHOVE"), 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, ft.sent)
}

func TestDispatchAmountRules(t *testing.T) {
	d, ft := dispatchFixture(t, 20000)
	ctx := context.Background()

	var verr *ValidationError
	assert.ErrorAs(t, d.Dispatch(ctx, protocol.ActionCheck, 500), &verr)
	assert.ErrorAs(t, d.Dispatch(ctx, protocol.ActionFold, 1), &verr)
	assert.ErrorAs(t, d.Dispatch(ctx, protocol.ActionBet, 0), &verr)
	assert.ErrorAs(t, d.Dispatch(ctx, protocol.ActionRaise, -100), &verr)
	assert.Empty(t, ft.sent)

	require.NoError(t, d.Dispatch(ctx, protocol.ActionFold, 0))
	require.Len(t, ft.sent, 1)
	assert.Equal(t, protocol.ActionFold, ft.sent[0].Kind)
	assert.Zero(t, ft.sent[0].Amount)
}

func TestDispatchRaiseBelowMinimum(t *testing.T) {
	d, ft := dispatchFixture(t, 20000)
	// Facing 1000 the minimum total is 2000.
	err := d.Dispatch(context.Background(), protocol.ActionRaise, 1500)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, ft.sent)
}

func TestDispatchRaiseConvertsToIncrement(t *testing.T) {
	d, ft := dispatchFixture(t, 20000)
	require.NoError(t, d.Dispatch(context.Background(), protocol.ActionRaise, 3000))
	require.Len(t, ft.sent, 1)
	assert.Equal(t, protocol.ActionRaise, ft.sent[0].Kind)
	// Wire carries the increment above the standing 1000.
	assert.Equal(t, int64(2000), ft.sent[0].Amount)
}

func TestDispatchAllInForLessIsLegal(t *testing.T) {
	// Stack 1500 cannot reach the 2000 minimum; shoving it is still legal.
	d, ft := dispatchFixture(t, 1500)
	require.NoError(t, d.Dispatch(context.Background(), protocol.ActionRaise, 1500))
	require.Len(t, ft.sent, 1)
	assert.Equal(t, int64(500), ft.sent[0].Amount)
}

func TestDispatchAmountExceedsStack(t *testing.T) {
	d, ft := dispatchFixture(t, 1500)
	err := d.Dispatch(context.Background(), protocol.ActionRaise, 2000)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, ft.sent)
}

func TestDispatchPotFractionSizesRaise(t *testing.T) {
	d, ft := dispatchFixture(t, 20000)
	// Effective pot is 1500; a full-pot raise rounds to 1500 and clamps up
	// to the 2000 minimum.
	require.NoError(t, d.DispatchPotFraction(context.Background(), 1.0))
	require.Len(t, ft.sent, 1)
	assert.Equal(t, protocol.ActionRaise, ft.sent[0].Kind)
	assert.Equal(t, int64(1000), ft.sent[0].Amount)
}

func TestDispatchPotFractionShortStackGoesAllIn(t *testing.T) {
	d, ft := dispatchFixture(t, 2000)
	require.NoError(t, d.DispatchPotFraction(context.Background(), 1.5))
	require.Len(t, ft.sent, 1)
	assert.Equal(t, protocol.ActionAllIn, ft.sent[0].Kind)
	assert.Zero(t, ft.sent[0].Amount)
}

func TestDispatchPropagatesTransportError(t *testing.T) {
	d, ft := dispatchFixture(t, 20000)
	ft.err = &TransportError{Op: "action", Err: context.DeadlineExceeded}
	err := d.Dispatch(context.Background(), protocol.ActionCall, 0)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
}
