package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/wepoker/tablesync/pkg/gamestate"
	"github.com/wepoker/tablesync/pkg/protocol"
)

// PollingTransport implements the lifecycle contract over the REST snapshot
// API. Connecting succeeds on the first state fetch; afterwards a repeating
// task refreshes the snapshot at the configured cadence. Each tick awaits
// the previous fetch before scheduling the next, so in-flight requests never
// overlap and reconcile out of order. A failed refresh is transient: the
// loop keeps running, retries forever and recovers silently.
type PollingTransport struct {
	cfg  *Config
	rec  *gamestate.Reconciler
	log  slog.Logger
	h    hooks
	fsm  *connFSM
	http *http.Client

	mu           sync.Mutex
	cancel       context.CancelFunc
	done         chan struct{}
	transientErr error
}

// NewPollingTransport builds the polling strategy around a reconciler.
func NewPollingTransport(cfg *Config, rec *gamestate.Reconciler, log slog.Logger, h hooks) *PollingTransport {
	return &PollingTransport{
		cfg:  cfg,
		rec:  rec,
		log:  log,
		h:    h,
		fsm:  newConnFSM(log),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *PollingTransport) tableURL(suffix string) string {
	base := strings.TrimRight(p.cfg.ServerURL, "/")
	return fmt.Sprintf("%s/api/game/tables/%d%s", base, p.cfg.TableID, suffix)
}

// Connect joins the table, fetches the first snapshot and starts the refresh
// loop. Synchronous: a non-nil return means the session is live.
func (p *PollingTransport) Connect(ctx context.Context) error {
	if !p.fsm.to(StateConnecting) {
		return fmt.Errorf("connect refused in state %s", p.fsm.current())
	}

	join := map[string]any{
		"tableId":  p.cfg.TableID,
		"playerId": p.cfg.PlayerID,
		"nickname": p.cfg.Nickname,
		"buyIn":    p.cfg.BuyIn,
	}
	resp, err := p.post(ctx, "/join", join)
	if err != nil {
		p.fsm.to(StateDisconnected)
		return err
	}
	if !resp.OK() {
		p.fsm.to(StateDisconnected)
		return &RejectedError{Reason: resp.Message}
	}

	if err := p.refresh(ctx); err != nil {
		p.fsm.to(StateDisconnected)
		return err
	}
	p.fsm.to(StateConnected)

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()
	go p.loop(loopCtx, done)

	p.log.Infof("joined table %d via polling (%s cadence)",
		p.cfg.TableID, p.cfg.PollInterval)
	return nil
}

// loop is the repeating refresh task. The timer is re-armed only after the
// fetch completes. done is passed in because Close clears the struct fields
// before the loop drains.
func (p *PollingTransport) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(p.cfg.PollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := p.refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.setTransient(err)
			p.log.Warnf("snapshot refresh failed, retrying next tick: %v", err)
		} else {
			p.setTransient(nil)
		}
		timer.Reset(p.cfg.PollInterval)
	}
}

// refresh fetches one snapshot and reconciles it into the store.
func (p *PollingTransport) refresh(ctx context.Context) error {
	u := p.tableURL("/state") + "?playerId=" + url.QueryEscape(p.cfg.PlayerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &TransportError{Op: "state", Err: err}
	}
	resp, err := p.doJSON(req)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &TransportError{
			Op:  "state",
			Err: fmt.Errorf("declined: code=%d %s", resp.Code, resp.Message),
		}
	}
	var snap protocol.TableSnapshot
	if err := json.Unmarshal(resp.Data, &snap); err != nil {
		return &TransportError{Op: "state", Err: fmt.Errorf("malformed snapshot: %w", err)}
	}
	p.rec.ApplySnapshot(&snap)
	p.h.update()
	return nil
}

// SendAction posts the action and reconciles the follow-up snapshot. State
// is never mutated from the request itself.
func (p *PollingTransport) SendAction(ctx context.Context, action protocol.OutboundAction) error {
	body := map[string]any{
		"playerId": p.cfg.PlayerID,
		"action":   string(action.Kind),
		"amount":   action.Amount,
	}
	resp, err := p.post(ctx, "/action", body)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &RejectedError{Reason: resp.Message}
	}
	if err := p.refresh(ctx); err != nil {
		p.log.Warnf("post-action refresh failed: %v", err)
	}
	return nil
}

// StartGame asks the server to deal the first hand.
func (p *PollingTransport) StartGame(ctx context.Context) error {
	resp, err := p.post(ctx, "/start", nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &RejectedError{Reason: resp.Message}
	}
	if err := p.refresh(ctx); err != nil {
		p.log.Warnf("post-start refresh failed: %v", err)
	}
	return nil
}

// Rebuy adds chips to a busted stack.
func (p *PollingTransport) Rebuy(ctx context.Context, amount int64) error {
	body := map[string]any{"playerId": p.cfg.PlayerID, "amount": amount}
	resp, err := p.post(ctx, "/rebuy", body)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &RejectedError{Reason: resp.Message}
	}
	if err := p.refresh(ctx); err != nil {
		p.log.Warnf("post-rebuy refresh failed: %v", err)
	}
	return nil
}

// State returns the lifecycle state. Transient refresh failures do not leave
// StateConnected; LastError exposes them for a UI indicator.
func (p *PollingTransport) State() ConnState { return p.fsm.current() }

// LastError returns the most recent transient refresh failure, nil while
// healthy.
func (p *PollingTransport) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transientErr
}

func (p *PollingTransport) setTransient(err error) {
	p.mu.Lock()
	p.transientErr = err
	p.mu.Unlock()
}

// Close stops the refresh loop and waits for it to drain, so no reconcile
// can land after Close returns.
func (p *PollingTransport) Close() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	p.fsm.to(StateDisconnected)
	return nil
}

func (p *PollingTransport) post(ctx context.Context, suffix string, body any) (*protocol.APIResponse, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Op: suffix, Err: err}
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tableURL(suffix), rd)
	if err != nil {
		return nil, &TransportError{Op: suffix, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return p.doJSON(req)
}

func (p *PollingTransport) doJSON(req *http.Request) (*protocol.APIResponse, error) {
	httpResp, err := p.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: req.URL.Path, Err: err}
	}
	defer httpResp.Body.Close()

	var resp protocol.APIResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, &TransportError{Op: req.URL.Path, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return &resp, nil
}
