package client

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/decred/slog"

	"github.com/wepoker/tablesync/pkg/gamestate"
	"github.com/wepoker/tablesync/pkg/protocol"
)

// StateUpdateMsg carries a freshly reconciled view to the UI loop.
type StateUpdateMsg struct {
	View gamestate.TableView
}

// TableClient is the facade over one table session: a store and reconciler,
// the configured transport strategy, and the action dispatcher. Consumers
// read reconciled views from UpdatesCh and asynchronous failures from
// ErrorsCh; both channels are buffered and never block a transport.
type TableClient struct {
	// UpdatesCh receives a StateUpdateMsg after every reconcile.
	UpdatesCh chan tea.Msg

	// ErrorsCh receives asynchronous failures: push rejections, stream
	// loss, reconnect exhaustion.
	ErrorsCh chan error

	cfg        *Config
	log        slog.Logger
	store      *gamestate.Store
	rec        *gamestate.Reconciler
	transport  Transport
	dispatcher *Dispatcher

	ctx    context.Context
	cancel context.CancelFunc
}

// NewTableClient wires a session for the configured transport. It does not
// connect; call Join.
func NewTableClient(ctx context.Context, cfg *Config, log slog.Logger) (*TableClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &TableClient{
		UpdatesCh: make(chan tea.Msg, 100),
		ErrorsCh:  make(chan error, 10),
		cfg:       cfg,
		log:       log,
		store:     gamestate.NewStore(cfg.PlayerID, cfg.TableID),
		ctx:       ctx,
		cancel:    cancel,
	}
	c.rec = gamestate.NewReconciler(c.store, log)

	h := hooks{onUpdate: c.notifyUpdate, onError: c.notifyError}
	switch cfg.Transport {
	case TransportPolling:
		c.transport = NewPollingTransport(cfg, c.rec, log, h)
	case TransportPush:
		c.transport = NewPushTransport(cfg, c.rec, log, h)
	default:
		cancel()
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
	c.dispatcher = NewDispatcher(c.store, c.transport, log)

	if cfg.DiagInterval > 0 {
		go c.runDiagnostics(ctx, cfg.DiagInterval)
	}
	return c, nil
}

func (c *TableClient) notifyUpdate() {
	select {
	case c.UpdatesCh <- StateUpdateMsg{View: c.store.View()}:
	default:
		c.log.Warnf("updates channel full, dropping view")
	}
}

func (c *TableClient) notifyError(err error) {
	select {
	case c.ErrorsCh <- err:
	default:
		c.log.Warnf("errors channel full, dropping: %v", err)
	}
}

// Join connects the transport and seats the player.
func (c *TableClient) Join(ctx context.Context) error {
	return c.transport.Connect(ctx)
}

// Dispatch validates and sends one action; amounts are absolute totals.
func (c *TableClient) Dispatch(ctx context.Context, kind protocol.ActionKind, amount int64) error {
	return c.dispatcher.Dispatch(ctx, kind, amount)
}

// DispatchPotFraction sends a pot-fraction sized bet or raise.
func (c *TableClient) DispatchPotFraction(ctx context.Context, fraction float64) error {
	return c.dispatcher.DispatchPotFraction(ctx, fraction)
}

// StartGame asks the server to deal the first hand.
func (c *TableClient) StartGame(ctx context.Context) error {
	return c.transport.StartGame(ctx)
}

// Rebuy tops up a busted stack.
func (c *TableClient) Rebuy(ctx context.Context, amount int64) error {
	return c.transport.Rebuy(ctx, amount)
}

// View returns a deep copy of the current reconciled view.
func (c *TableClient) View() gamestate.TableView {
	return c.store.View()
}

// ConnState reports the transport lifecycle state.
func (c *TableClient) ConnState() ConnState {
	return c.transport.State()
}

// PlayerID returns the viewer's id.
func (c *TableClient) PlayerID() string {
	return c.cfg.PlayerID
}

// Leave closes the session. Idempotent; no updates arrive after it returns.
func (c *TableClient) Leave() error {
	c.cancel()
	return c.transport.Close()
}
