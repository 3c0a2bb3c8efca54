// Package gamestate holds the single canonical view of the table this client
// is watching. The Store is the only mutable state in the module; the
// Reconciler is its only writer, and readers always get a deep copy so no
// half-updated view is ever observable.
package gamestate

import (
	"github.com/wepoker/tablesync/pkg/betting"
	"github.com/wepoker/tablesync/pkg/protocol"
)

// NoSeat marks an absent seat reference.
const NoSeat = -1

// Defaults applied when a snapshot omits the blind amounts.
const (
	DefaultSmallBlind = 500
	DefaultBigBlind   = 1000
)

// Player is the reconciled per-player view, seat references normalized.
type Player struct {
	ID           string
	Nickname     string
	Stack        int64
	Seat         int
	Status       protocol.PlayerStatus
	CurrentBet   int64
	IsDealer     bool
	IsSmallBlind bool
	IsBigBlind   bool
	LastAction   *protocol.LastAction
}

// Result is the most recent hand result pushed by the server.
type Result struct {
	Winner string
	Amount int64
}

// TableView is the canonical reconciled table state plus the viewer-local
// fields derived from it. All amounts are minor currency units. Seat fields
// use NoSeat for "none"; ActionDeadline is unix milliseconds, 0 for none.
type TableView struct {
	TableID              int64
	State                protocol.TableState
	PotSize              int64
	PotBreakdown         []protocol.PotShare
	CurrentBetThisStreet int64
	NextToActSeat        int
	ActionDeadline       int64
	ButtonSeat           int
	SmallBlindSeat       int
	BigBlindSeat         int
	SmallBlind           int64
	BigBlind             int64
	Players              []Player
	CommunityCards       []protocol.Card
	RevealedHoleCards    map[string][]protocol.Card

	// Viewer-local derived fields, recomputed on every reconcile.
	ViewerID    string
	MySeat      int
	MyStack     int64
	MyStatus    protocol.PlayerStatus
	MyToCall    int64
	MyHoleCards []protocol.Card

	RecentAction string
	LastResult   *Result

	// Verified is false once the client has fallen back to the local
	// degraded mode; nothing in an unverified view is server-confirmed.
	Verified bool
}

// PlayerByID finds a player by normalized id.
func (v *TableView) PlayerByID(id string) *Player {
	for i := range v.Players {
		if v.Players[i].ID == id {
			return &v.Players[i]
		}
	}
	return nil
}

// PlayerBySeat finds a player by seat index.
func (v *TableView) PlayerBySeat(seat int) *Player {
	if seat == NoSeat {
		return nil
	}
	for i := range v.Players {
		if v.Players[i].Seat == seat {
			return &v.Players[i]
		}
	}
	return nil
}

// CurrentPlayerName is the nickname of the player next to act, or "none".
func (v *TableView) CurrentPlayerName() string {
	if !v.State.IsBettingStreet() {
		return "none"
	}
	if p := v.PlayerBySeat(v.NextToActSeat); p != nil {
		return p.Nickname
	}
	return "none"
}

// MyTurn reports whether the viewer is next to act on a live street.
func (v *TableView) MyTurn() bool {
	return v.MySeat != NoSeat && v.MySeat == v.NextToActSeat &&
		v.State.IsBettingStreet()
}

// ActionsEnabled is the advisory gate for the action buttons: the viewer's
// turn, on a betting street, with ACTIVE status. Advisory only; the server
// remains the authority on action legality.
func (v *TableView) ActionsEnabled() bool {
	return v.MyTurn() && v.MyStatus == protocol.StatusActive
}

// Street projects the view into the betting calculator's input.
func (v *TableView) Street() betting.Street {
	bets := make([]int64, 0, len(v.Players))
	for i := range v.Players {
		bets = append(bets, v.Players[i].CurrentBet)
	}
	return betting.Street{
		ReportedPot:          v.PotSize,
		CurrentBetThisStreet: v.CurrentBetThisStreet,
		StreetBets:           bets,
		BigBlind:             v.BigBlind,
	}
}

// clone deep-copies the view so readers never alias store-owned slices.
func (v *TableView) clone() TableView {
	out := *v
	out.PotBreakdown = append([]protocol.PotShare(nil), v.PotBreakdown...)
	out.Players = make([]Player, len(v.Players))
	for i := range v.Players {
		out.Players[i] = v.Players[i]
		if la := v.Players[i].LastAction; la != nil {
			laCopy := *la
			out.Players[i].LastAction = &laCopy
		}
	}
	out.CommunityCards = append([]protocol.Card(nil), v.CommunityCards...)
	out.MyHoleCards = append([]protocol.Card(nil), v.MyHoleCards...)
	if v.RevealedHoleCards != nil {
		out.RevealedHoleCards = make(map[string][]protocol.Card, len(v.RevealedHoleCards))
		for id, cards := range v.RevealedHoleCards {
			out.RevealedHoleCards[id] = append([]protocol.Card(nil), cards...)
		}
	}
	if v.LastResult != nil {
		res := *v.LastResult
		out.LastResult = &res
	}
	return out
}
