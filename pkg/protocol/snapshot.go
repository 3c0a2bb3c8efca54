package protocol

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// TableState is the server's table phase.
type TableState string

const (
	StateWaiting  TableState = "WAITING"
	StateDealing  TableState = "DEALING"
	StatePreFlop  TableState = "PRE_FLOP"
	StateFlop     TableState = "FLOP"
	StateTurn     TableState = "TURN"
	StateRiver    TableState = "RIVER"
	StateShowdown TableState = "SHOWDOWN"
	StateCleanup  TableState = "CLEANUP"
)

// IsBettingStreet reports whether the state is a live betting round, the only
// phases during which nextToActSeat is meaningful.
func (s TableState) IsBettingStreet() bool {
	switch s {
	case StatePreFlop, StateFlop, StateTurn, StateRiver:
		return true
	}
	return false
}

// PlayerStatus is a seated player's status.
type PlayerStatus string

const (
	StatusSitting PlayerStatus = "SITTING"
	StatusActive  PlayerStatus = "ACTIVE"
	StatusFolded  PlayerStatus = "FOLDED"
	StatusAllIn   PlayerStatus = "ALL_IN"
	StatusWaiting PlayerStatus = "WAITING"
)

// PlayerID is an opaque player identifier. The server is inconsistent about
// its JSON type (the REST layer emits strings, the push layer numbers), so it
// decodes from either and always compares as a string.
type PlayerID string

func (id *PlayerID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = PlayerID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = PlayerID(n.String())
	return nil
}

func (id PlayerID) String() string { return string(id) }

// PotShare is one entry of the pot breakdown (main pot plus side pots).
type PotShare struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// LastAction records a player's most recent action this hand.
type LastAction struct {
	Action    string `json:"action"`
	BetAmount int64  `json:"betAmount,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// PlayerView is the per-player slice of a table snapshot.
type PlayerView struct {
	PlayerID     PlayerID     `json:"playerId"`
	Nickname     string       `json:"nickname,omitempty"`
	StackSize    int64        `json:"stackSize,omitempty"`
	SeatNumber   *int         `json:"seatNumber,omitempty"`
	Status       PlayerStatus `json:"status,omitempty"`
	CurrentBet   int64        `json:"currentBet,omitempty"`
	IsDealer     bool         `json:"isDealer,omitempty"`
	IsSmallBlind bool         `json:"isSmallBlind,omitempty"`
	IsBigBlind   bool         `json:"isBigBlind,omitempty"`
	LastAction   *LastAction  `json:"lastAction,omitempty"`
}

// HandInfo is the current-hand sub-object of a snapshot. Hole cards are only
// present for the viewing player and for opponents who revealed at showdown.
type HandInfo struct {
	CommunityCards  []Card            `json:"communityCards,omitempty"`
	PlayerHoleCards map[string][]Card `json:"playerHoleCards,omitempty"`
}

// TableSnapshot is the authoritative table view as of one logical moment.
// Seat fields are pointers because the server omits or nulls them when there
// is no such seat; absent normalizes to "none" during reconciliation.
type TableSnapshot struct {
	State                TableState            `json:"state,omitempty"`
	TotalPotSize         int64                 `json:"totalPotSize,omitempty"`
	PotBreakdown         []PotShare            `json:"potBreakdown,omitempty"`
	CurrentBetThisStreet int64                 `json:"currentBetThisStreet,omitempty"`
	NextToActSeat        *int                  `json:"nextToActSeat,omitempty"`
	ActionDeadline       int64                 `json:"actionDeadline,omitempty"`
	ButtonSeat           *int                  `json:"buttonSeat,omitempty"`
	SmallBlindSeat       *int                  `json:"smallBlindSeat,omitempty"`
	BigBlindSeat         *int                  `json:"bigBlindSeat,omitempty"`
	SmallBlindAmount     int64                 `json:"smallBlindAmount,omitempty"`
	BigBlindAmount       int64                 `json:"bigBlindAmount,omitempty"`
	Players              map[string]PlayerView `json:"players,omitempty"`
	CurrentHand          *HandInfo             `json:"currentHand,omitempty"`
}

// APIResponse is the REST envelope: code==200 signals success, anything else
// is a domain-level failure described by Message.
type APIResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// OK reports whether the response signals success.
func (r *APIResponse) OK() bool { return r.Code == 200 }

// FormatAmount renders an integer amount of minor currency units (hundredths)
// for display, e.g. 12345 -> "123.45".
func FormatAmount(minor int64) string {
	neg := ""
	if minor < 0 {
		neg = "-"
		minor = -minor
	}
	return neg + strconv.FormatInt(minor/100, 10) + "." +
		pad2(minor%100)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
