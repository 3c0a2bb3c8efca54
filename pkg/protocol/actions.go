package protocol

import "fmt"

// ActionKind is a betting action the client can send.
type ActionKind string

const (
	ActionCheck ActionKind = "CHECK"
	ActionCall  ActionKind = "CALL"
	ActionFold  ActionKind = "FOLD"
	ActionBet   ActionKind = "BET"
	ActionRaise ActionKind = "RAISE"
	ActionAllIn ActionKind = "ALL_IN"
)

// RequiresAmount reports whether the action carries a chip amount on the
// wire. CALL, CHECK, FOLD and ALL_IN amounts are implied by table state.
func (k ActionKind) RequiresAmount() bool {
	return k == ActionBet || k == ActionRaise
}

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionCheck, ActionCall, ActionFold, ActionBet, ActionRaise, ActionAllIn:
		return true
	}
	return false
}

// OutboundAction is an action on its way to the server. Amount semantics
// follow the server contract: for RAISE it is the increment above the current
// street bet, for BET it is the absolute amount, zero otherwise.
type OutboundAction struct {
	Kind   ActionKind `json:"action"`
	Amount int64      `json:"amount"`
}

// MessageType returns the push-envelope message type for the action.
func (a OutboundAction) MessageType() (MessageType, error) {
	switch a.Kind {
	case ActionCheck:
		return MsgCheck, nil
	case ActionCall:
		return MsgCall, nil
	case ActionFold:
		return MsgFold, nil
	case ActionBet:
		return MsgBet, nil
	case ActionRaise:
		return MsgRaise, nil
	case ActionAllIn:
		return MsgAllIn, nil
	}
	return "", fmt.Errorf("unknown action kind %q", a.Kind)
}
