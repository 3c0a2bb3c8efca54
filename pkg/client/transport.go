package client

import (
	"context"

	"github.com/wepoker/tablesync/pkg/protocol"
)

// Transport is the lifecycle contract both strategies implement. The action
// dispatcher and the facade see only this interface, so the reconciler,
// store and betting calculator are written once and shared.
//
// Connect establishes the session. The polling strategy is synchronous: it
// returns once the first snapshot has been fetched. The push strategy begins
// establishment and returns; progress is observable through State and
// failures arrive on the hook's error callback, driving the bounded
// reconnect machinery.
//
// Close leaves the table: it atomically stops any polling timer or closes
// the push connection and clears session identifiers. No reconciliation
// happens after Close returns.
type Transport interface {
	Connect(ctx context.Context) error
	SendAction(ctx context.Context, action protocol.OutboundAction) error
	StartGame(ctx context.Context) error
	Rebuy(ctx context.Context, amount int64) error
	State() ConnState
	Close() error
}

// hooks are the callbacks a transport uses to tell its owner about applied
// updates and asynchronous failures. Either may be nil.
type hooks struct {
	onUpdate func()
	onError  func(error)
}

func (h hooks) update() {
	if h.onUpdate != nil {
		h.onUpdate()
	}
}

func (h hooks) fail(err error) {
	if h.onError != nil {
		h.onError(err)
	}
}
