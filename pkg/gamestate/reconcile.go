package gamestate

import (
	"sort"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/slog"

	"github.com/wepoker/tablesync/pkg/protocol"
)

// Reconciler merges inbound payloads into the Store, producing a fully
// normalized view each time. It is the store's single writer: the polling
// loop and the push read loop both hand their payloads here and nowhere
// else. Reconciliation is idempotent; applying the same payload twice leaves
// the store unchanged.
type Reconciler struct {
	store *Store
	log   slog.Logger
}

// NewReconciler wires a reconciler to its store.
func NewReconciler(store *Store, log slog.Logger) *Reconciler {
	return &Reconciler{store: store, log: log}
}

// ApplySnapshot replaces the table portion of the view with a full snapshot
// and recomputes every derived field.
func (r *Reconciler) ApplySnapshot(snap *protocol.TableSnapshot) {
	if snap == nil {
		return
	}
	r.store.apply(func(v *TableView) {
		v.State = snap.State
		if v.State == "" {
			v.State = protocol.StateWaiting
		}
		v.PotSize = nonNegative(snap.TotalPotSize)
		v.PotBreakdown = append([]protocol.PotShare(nil), snap.PotBreakdown...)
		v.CurrentBetThisStreet = nonNegative(snap.CurrentBetThisStreet)
		v.NextToActSeat = normalizeSeat(snap.NextToActSeat)
		v.ActionDeadline = nonNegative(snap.ActionDeadline)
		v.ButtonSeat = normalizeSeat(snap.ButtonSeat)
		v.SmallBlindSeat = normalizeSeat(snap.SmallBlindSeat)
		v.BigBlindSeat = normalizeSeat(snap.BigBlindSeat)
		v.SmallBlind = amountOrDefault(snap.SmallBlindAmount, DefaultSmallBlind)
		v.BigBlind = amountOrDefault(snap.BigBlindAmount, DefaultBigBlind)
		v.Players = buildPlayers(snap.Players)
		r.extractHand(v, snap.CurrentHand)
		deriveViewer(v)
		v.RecentAction = deriveRecentAction(v.Players)
	})
	if r.log.Level() <= slog.LevelTrace {
		view := r.store.View()
		r.log.Tracef("reconciled snapshot: %s", spew.Sdump(view))
	}
}

// ApplyGameStateUpdate merges a partial push update: only fields present on
// the wire replace current values, then derived fields are recomputed.
func (r *Reconciler) ApplyGameStateUpdate(p *protocol.GameStateUpdatePayload) {
	if p == nil {
		return
	}
	r.store.apply(func(v *TableView) {
		if p.State != nil {
			v.State = *p.State
		}
		if p.TotalPotSize != nil {
			v.PotSize = nonNegative(*p.TotalPotSize)
		}
		if p.PotBreakdown != nil {
			v.PotBreakdown = append([]protocol.PotShare(nil), p.PotBreakdown...)
		}
		if p.CurrentBetThisStreet != nil {
			v.CurrentBetThisStreet = nonNegative(*p.CurrentBetThisStreet)
		}
		if p.NextToActSeat != nil {
			v.NextToActSeat = normalizeSeat(p.NextToActSeat)
		}
		if p.ActionDeadline != nil {
			v.ActionDeadline = nonNegative(*p.ActionDeadline)
		}
		if p.ButtonSeat != nil {
			v.ButtonSeat = normalizeSeat(p.ButtonSeat)
		}
		if p.SmallBlindSeat != nil {
			v.SmallBlindSeat = normalizeSeat(p.SmallBlindSeat)
		}
		if p.BigBlindSeat != nil {
			v.BigBlindSeat = normalizeSeat(p.BigBlindSeat)
		}
		if p.SmallBlindAmount != nil {
			v.SmallBlind = amountOrDefault(*p.SmallBlindAmount, DefaultSmallBlind)
		}
		if p.BigBlindAmount != nil {
			v.BigBlind = amountOrDefault(*p.BigBlindAmount, DefaultBigBlind)
		}
		if p.Players != nil {
			v.Players = buildPlayers(p.Players)
		}
		if p.CurrentHand != nil {
			r.extractHand(v, p.CurrentHand)
		}
		deriveViewer(v)
		v.RecentAction = deriveRecentAction(v.Players)
	})
}

// ApplyPotUpdate replaces the total pot.
func (r *Reconciler) ApplyPotUpdate(amount int64) {
	r.store.apply(func(v *TableView) {
		v.PotSize = nonNegative(amount)
	})
}

// ApplyBoardUpdate replaces the community cards.
func (r *Reconciler) ApplyBoardUpdate(cards []protocol.Card) {
	r.store.apply(func(v *TableView) {
		v.CommunityCards = filterValid(cards)
	})
}

// ApplyTimeWarning moves the action deadline to now plus the remaining time.
func (r *Reconciler) ApplyTimeWarning(timeLeftMs int64) {
	deadline := time.Now().UnixMilli() + nonNegative(timeLeftMs)
	r.store.apply(func(v *TableView) {
		v.ActionDeadline = deadline
	})
}

// ApplyResult records the pushed hand result. Stacks and pot are not touched;
// the authoritative numbers arrive with the next state update.
func (r *Reconciler) ApplyResult(winner string, amount int64) {
	r.store.apply(func(v *TableView) {
		v.LastResult = &Result{Winner: winner, Amount: amount}
	})
}

// MarkUnverified flags the view as degraded-mode data.
func (r *Reconciler) MarkUnverified() {
	r.store.apply(func(v *TableView) {
		v.Verified = false
	})
}

// MarkVerified restores the authoritative flag after a live reconnect.
func (r *Reconciler) MarkVerified() {
	r.store.apply(func(v *TableView) {
		v.Verified = true
	})
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func normalizeSeat(seat *int) int {
	if seat == nil || *seat < 0 {
		return NoSeat
	}
	return *seat
}

func amountOrDefault(amount, def int64) int64 {
	if amount <= 0 {
		return def
	}
	return amount
}

func filterValid(cards []protocol.Card) []protocol.Card {
	out := make([]protocol.Card, 0, len(cards))
	for _, c := range cards {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

// buildPlayers normalizes the wire player map into a slice ordered by seat
// (seatless players last, by id) so iteration order is deterministic.
func buildPlayers(wire map[string]protocol.PlayerView) []Player {
	players := make([]Player, 0, len(wire))
	for key, pv := range wire {
		id := pv.PlayerID.String()
		if id == "" {
			id = key
		}
		nick := pv.Nickname
		if nick == "" {
			nick = "player"
		}
		status := pv.Status
		if status == "" {
			status = protocol.StatusSitting
		}
		p := Player{
			ID:           id,
			Nickname:     nick,
			Stack:        nonNegative(pv.StackSize),
			Seat:         normalizeSeat(pv.SeatNumber),
			Status:       status,
			CurrentBet:   nonNegative(pv.CurrentBet),
			IsDealer:     pv.IsDealer,
			IsSmallBlind: pv.IsSmallBlind,
			IsBigBlind:   pv.IsBigBlind,
		}
		if pv.LastAction != nil {
			la := *pv.LastAction
			p.LastAction = &la
		}
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		si, sj := players[i].Seat, players[j].Seat
		if si == NoSeat {
			si = int(^uint(0) >> 1)
		}
		if sj == NoSeat {
			sj = int(^uint(0) >> 1)
		}
		if si != sj {
			return si < sj
		}
		return players[i].ID < players[j].ID
	})
	return players
}

// deriveViewer recomputes the viewer-local fields from the player list.
// MyToCall is never stored independently of its inputs.
func deriveViewer(v *TableView) {
	me := v.PlayerByID(v.ViewerID)
	if me == nil {
		v.MySeat = NoSeat
		v.MyStack = 0
		v.MyStatus = ""
		v.MyToCall = 0
		return
	}
	v.MySeat = me.Seat
	v.MyStack = me.Stack
	v.MyStatus = me.Status
	toCall := v.CurrentBetThisStreet - me.CurrentBet
	if toCall < 0 {
		toCall = 0
	}
	v.MyToCall = toCall
}

// deriveRecentAction picks the latest lastAction across players; ties on
// timestamp resolve to the lower seat so the result is deterministic.
func deriveRecentAction(players []Player) string {
	var latest *Player
	for i := range players {
		p := &players[i]
		if p.LastAction == nil {
			continue
		}
		// Slice is seat-ordered, so strictly-greater keeps the lower seat
		// on equal timestamps.
		if latest == nil || p.LastAction.Timestamp > latest.LastAction.Timestamp {
			latest = p
		}
	}
	if latest == nil {
		return "-"
	}
	s := latest.Nickname + ": " + latest.LastAction.Action
	if latest.LastAction.BetAmount > 0 {
		s += " " + protocol.FormatAmount(latest.LastAction.BetAmount)
	}
	return s
}

// extractHand pulls board and hole cards from the current-hand sub-object.
// A missing or malformed hand means "no cards". Hole cards for a live,
// unrevealed opponent are never materialized: on a betting street, entries
// for ACTIVE players other than the viewer are dropped.
func (r *Reconciler) extractHand(v *TableView, hand *protocol.HandInfo) {
	if hand == nil {
		v.CommunityCards = nil
		v.MyHoleCards = nil
		v.RevealedHoleCards = nil
		return
	}
	v.CommunityCards = filterValid(hand.CommunityCards)
	if len(v.CommunityCards) > 5 {
		v.CommunityCards = v.CommunityCards[:5]
	}

	v.MyHoleCards = nil
	v.RevealedHoleCards = nil
	if hand.PlayerHoleCards == nil {
		return
	}
	revealed := make(map[string][]protocol.Card)
	for rawID, cards := range hand.PlayerHoleCards {
		id := normalizeID(rawID)
		valid := filterValid(cards)
		if len(valid) == 0 {
			continue
		}
		if id == v.ViewerID {
			v.MyHoleCards = valid
			continue
		}
		if v.State.IsBettingStreet() {
			if p := findPlayer(v.Players, id); p != nil && p.Status == protocol.StatusActive {
				continue
			}
		}
		revealed[id] = valid
	}
	if len(revealed) > 0 {
		v.RevealedHoleCards = revealed
	}
}

func findPlayer(players []Player, id string) *Player {
	for i := range players {
		if players[i].ID == id {
			return &players[i]
		}
	}
	return nil
}

// normalizeID string-normalizes a wire player id (numbers and strings must
// compare equal).
func normalizeID(raw string) string {
	var id protocol.PlayerID
	if err := id.UnmarshalJSON([]byte(raw)); err == nil && id != "" {
		return id.String()
	}
	return raw
}
