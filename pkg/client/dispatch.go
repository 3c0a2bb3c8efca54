package client

import (
	"context"
	"fmt"

	"github.com/decred/slog"

	"github.com/wepoker/tablesync/pkg/betting"
	"github.com/wepoker/tablesync/pkg/gamestate"
	"github.com/wepoker/tablesync/pkg/protocol"
)

// Dispatcher validates actions against the current view before handing them
// to the transport. Amounts are absolute totals at this layer; the RAISE
// increment the wire wants is derived here, so callers and the UI never do
// that arithmetic themselves.
type Dispatcher struct {
	store     *gamestate.Store
	transport Transport
	log       slog.Logger
}

// NewDispatcher builds a dispatcher over a store and transport.
func NewDispatcher(store *gamestate.Store, transport Transport, log slog.Logger) *Dispatcher {
	return &Dispatcher{store: store, transport: transport, log: log}
}

// Dispatch validates and sends one action. A *ValidationError means the
// action never left the client; a *RejectedError means the server declined
// it; a *TransportError means delivery itself failed.
func (d *Dispatcher) Dispatch(ctx context.Context, kind protocol.ActionKind, amount int64) error {
	if !kind.Valid() {
		return &ValidationError{Reason: fmt.Sprintf("unknown action %q", kind)}
	}
	if kind.RequiresAmount() {
		if amount <= 0 {
			return &ValidationError{Reason: fmt.Sprintf("%s requires a positive amount", kind)}
		}
	} else if amount != 0 {
		return &ValidationError{Reason: fmt.Sprintf("%s carries no amount", kind)}
	}

	view := d.store.View()
	action := protocol.OutboundAction{Kind: kind}

	if kind.RequiresAmount() {
		street := view.Street()
		if amount > view.MyStack {
			return &ValidationError{Reason: fmt.Sprintf(
				"amount %s exceeds stack %s",
				protocol.FormatAmount(amount), protocol.FormatAmount(view.MyStack))}
		}
		// An all-in for less than the minimum is always legal.
		if min := betting.MinRaiseTotal(street, view.MyStack); amount < min &&
			!betting.IsAllIn(amount, view.MyStack) {
			return &ValidationError{Reason: fmt.Sprintf(
				"minimum is %s", protocol.FormatAmount(min))}
		}
		action.Amount = amount
		if kind == protocol.ActionRaise {
			// The wire wants the increment above the standing bet.
			action.Amount = amount - street.CurrentBetThisStreet
			if action.Amount <= 0 {
				return &ValidationError{Reason: fmt.Sprintf(
					"raise must exceed the standing bet %s",
					protocol.FormatAmount(street.CurrentBetThisStreet))}
			}
		}
	}

	d.log.Debugf("dispatching %s amount=%d", kind, action.Amount)
	return d.transport.SendAction(ctx, action)
}

// DispatchPotFraction sizes a raise at the given fraction of the effective
// pot and dispatches it. Fractions come from the UI presets.
func (d *Dispatcher) DispatchPotFraction(ctx context.Context, fraction float64) error {
	view := d.store.View()
	amount := betting.AmountForPotFraction(view.Street(), view.MyStack, fraction)
	kind := protocol.ActionRaise
	if view.CurrentBetThisStreet == 0 {
		kind = protocol.ActionBet
	}
	if betting.IsAllIn(amount, view.MyStack) {
		return d.Dispatch(ctx, protocol.ActionAllIn, 0)
	}
	return d.Dispatch(ctx, kind, amount)
}
