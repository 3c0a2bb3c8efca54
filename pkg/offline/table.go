// Package offline runs a local practice table for a session that has fallen
// back to degraded mode: cards are dealt and hands evaluated on this machine,
// but no chips ever move and nothing produced here is server-confirmed.
package offline

import (
	"fmt"
	"sort"

	"github.com/chehsunliu/poker"
	"github.com/decred/slog"

	"github.com/wepoker/tablesync/pkg/gamestate"
	"github.com/wepoker/tablesync/pkg/protocol"
)

const practiceStack = 100000

var botNicknames = []string{"north", "east", "south", "west", "river", "turn"}

// Table is a single-deck local hand against scripted opponents.
type Table struct {
	viewerID string
	seats    []seatEntry
	deck     *Deck
	seed     int64
	state    protocol.TableState
	board    []protocol.Card
	hole     map[string][]protocol.Card
	log      slog.Logger
}

type seatEntry struct {
	id       string
	nickname string
}

// HandResult is one player's showdown evaluation, best hand first after
// sorting.
type HandResult struct {
	PlayerID    string
	Nickname    string
	HoleCards   []protocol.Card
	Description string

	// rankValue is the evaluator's score; lower is better.
	rankValue int32
}

// NewTable seats the viewer and the given number of practice opponents.
func NewTable(viewerID, nickname string, opponents int, seed int64, log slog.Logger) (*Table, error) {
	if opponents < 1 || opponents > len(botNicknames) {
		return nil, fmt.Errorf("opponents must be between 1 and %d", len(botNicknames))
	}
	seats := []seatEntry{{id: viewerID, nickname: nickname}}
	for i := 0; i < opponents; i++ {
		seats = append(seats, seatEntry{
			id:       fmt.Sprintf("practice-%d", i+1),
			nickname: botNicknames[i],
		})
	}
	return &Table{
		viewerID: viewerID,
		seats:    seats,
		seed:     seed,
		state:    protocol.StateWaiting,
		hole:     make(map[string][]protocol.Card),
		log:      log,
	}, nil
}

// State returns the current local phase.
func (t *Table) State() protocol.TableState { return t.state }

// Deal starts a fresh hand: new shuffled deck, two hole cards per seat.
func (t *Table) Deal() error {
	if t.state != protocol.StateWaiting && t.state != protocol.StateCleanup {
		return fmt.Errorf("cannot deal during %s", t.state)
	}
	t.deck = NewDeck(t.seed)
	t.seed++
	t.board = nil
	t.hole = make(map[string][]protocol.Card)
	for _, s := range t.seats {
		t.hole[s.id] = t.deck.Draw(2)
	}
	t.state = protocol.StatePreFlop
	t.log.Debugf("practice hand dealt to %d seats", len(t.seats))
	return nil
}

// Advance moves to the next street, dealing board cards as needed. After the
// river it lands on SHOWDOWN; a further call resets to CLEANUP.
func (t *Table) Advance() (protocol.TableState, error) {
	switch t.state {
	case protocol.StatePreFlop:
		t.board = append(t.board, t.deck.Draw(3)...)
		t.state = protocol.StateFlop
	case protocol.StateFlop:
		t.board = append(t.board, t.deck.Draw(1)...)
		t.state = protocol.StateTurn
	case protocol.StateTurn:
		t.board = append(t.board, t.deck.Draw(1)...)
		t.state = protocol.StateRiver
	case protocol.StateRiver:
		t.state = protocol.StateShowdown
	case protocol.StateShowdown:
		t.state = protocol.StateCleanup
	default:
		return t.state, fmt.Errorf("cannot advance from %s", t.state)
	}
	return t.state, nil
}

// Showdown evaluates every seat's best five-card hand, best first. Ties keep
// seat order, so the earlier seat wins a split for display purposes.
func (t *Table) Showdown() ([]HandResult, error) {
	if t.state != protocol.StateShowdown {
		return nil, fmt.Errorf("no showdown during %s", t.state)
	}
	results := make([]HandResult, 0, len(t.seats))
	for _, s := range t.seats {
		cards := make([]poker.Card, 0, 7)
		for _, c := range append(append([]protocol.Card{}, t.hole[s.id]...), t.board...) {
			cards = append(cards, poker.NewCard(c.Code()))
		}
		rank := poker.Evaluate(cards)
		results = append(results, HandResult{
			PlayerID:    s.id,
			Nickname:    s.nickname,
			HoleCards:   t.hole[s.id],
			Description: poker.RankString(rank),
			rankValue:   rank,
		})
	}
	// Stable sort keeps seat order among equal ranks. Lower evaluator scores
	// are stronger hands.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].rankValue < results[j].rankValue
	})
	return results, nil
}

// Snapshot renders the local hand in the wire snapshot shape so the regular
// reconciler can apply it. Stacks are fixed and the pot stays empty; the
// caller marks the resulting view unverified.
func (t *Table) Snapshot() *protocol.TableSnapshot {
	players := make(map[string]protocol.PlayerView, len(t.seats))
	for i, s := range t.seats {
		seat := i
		players[s.id] = protocol.PlayerView{
			PlayerID:   protocol.PlayerID(s.id),
			Nickname:   s.nickname,
			StackSize:  practiceStack,
			SeatNumber: &seat,
			Status:     protocol.StatusActive,
		}
	}

	holeCards := map[string][]protocol.Card{
		t.viewerID: append([]protocol.Card(nil), t.hole[t.viewerID]...),
	}
	if t.state == protocol.StateShowdown || t.state == protocol.StateCleanup {
		for id, cards := range t.hole {
			holeCards[id] = append([]protocol.Card(nil), cards...)
		}
	}

	return &protocol.TableSnapshot{
		State:            t.state,
		SmallBlindAmount: gamestate.DefaultSmallBlind,
		BigBlindAmount:   gamestate.DefaultBigBlind,
		Players:          players,
		CurrentHand: &protocol.HandInfo{
			CommunityCards:  append([]protocol.Card(nil), t.board...),
			PlayerHoleCards: holeCards,
		},
	}
}
