package offline

import (
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wepoker/tablesync/pkg/gamestate"
	"github.com/wepoker/tablesync/pkg/protocol"
)

func TestDeckDealsUniqueCards(t *testing.T) {
	d := NewDeck(1)
	seen := make(map[protocol.Card]bool)
	for _, c := range d.Draw(52) {
		require.True(t, c.Valid())
		require.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, 52)
	assert.Zero(t, d.Remaining())
}

func TestDeckIsReproducible(t *testing.T) {
	assert.Equal(t, NewDeck(42).Draw(10), NewDeck(42).Draw(10))
}

func TestTableHandProgression(t *testing.T) {
	tbl, err := NewTable("p1", "alice", 2, 7, slog.Disabled)
	require.NoError(t, err)
	require.Equal(t, protocol.StateWaiting, tbl.State())

	require.NoError(t, tbl.Deal())
	require.Equal(t, protocol.StatePreFlop, tbl.State())

	// Cannot re-deal mid-hand.
	assert.Error(t, tbl.Deal())

	for _, want := range []protocol.TableState{
		protocol.StateFlop, protocol.StateTurn,
		protocol.StateRiver, protocol.StateShowdown,
	} {
		got, err := tbl.Advance()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	snap := tbl.Snapshot()
	assert.Len(t, snap.CurrentHand.CommunityCards, 5)

	// CLEANUP allows the next deal.
	_, err = tbl.Advance()
	require.NoError(t, err)
	require.NoError(t, tbl.Deal())
}

func TestSnapshotHidesOpponentCardsUntilShowdown(t *testing.T) {
	tbl, err := NewTable("p1", "alice", 2, 7, slog.Disabled)
	require.NoError(t, err)
	require.NoError(t, tbl.Deal())

	snap := tbl.Snapshot()
	require.NotNil(t, snap.CurrentHand)
	assert.Len(t, snap.CurrentHand.PlayerHoleCards, 1)
	assert.Len(t, snap.CurrentHand.PlayerHoleCards["p1"], 2)

	for tbl.State() != protocol.StateShowdown {
		_, err := tbl.Advance()
		require.NoError(t, err)
	}
	snap = tbl.Snapshot()
	assert.Len(t, snap.CurrentHand.PlayerHoleCards, 3)
}

func TestShowdownRanksAllSeats(t *testing.T) {
	tbl, err := NewTable("p1", "alice", 3, 11, slog.Disabled)
	require.NoError(t, err)
	require.NoError(t, tbl.Deal())

	_, err = tbl.Showdown()
	assert.Error(t, err, "showdown before the river must fail")

	for tbl.State() != protocol.StateShowdown {
		_, err := tbl.Advance()
		require.NoError(t, err)
	}

	results, err := tbl.Showdown()
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].rankValue, results[i].rankValue)
	}
	for _, r := range results {
		assert.Len(t, r.HoleCards, 2)
		assert.NotEmpty(t, r.Description)
	}
}

func TestSnapshotNeverMovesMoney(t *testing.T) {
	tbl, err := NewTable("p1", "alice", 1, 3, slog.Disabled)
	require.NoError(t, err)
	require.NoError(t, tbl.Deal())

	store := gamestate.NewStore("p1", 7)
	rec := gamestate.NewReconciler(store, slog.Disabled)

	for {
		rec.ApplySnapshot(tbl.Snapshot())
		rec.MarkUnverified()
		view := store.View()
		assert.Zero(t, view.PotSize)
		assert.False(t, view.Verified)
		for _, p := range view.Players {
			assert.Equal(t, int64(practiceStack), p.Stack)
		}
		if tbl.State() == protocol.StateShowdown {
			break
		}
		_, err := tbl.Advance()
		require.NoError(t, err)
	}
}
