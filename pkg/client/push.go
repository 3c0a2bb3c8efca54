package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decred/slog"

	"github.com/wepoker/tablesync/pkg/gamestate"
	"github.com/wepoker/tablesync/pkg/protocol"
)

// PushTransport implements the lifecycle contract over the persistent
// newline-delimited JSON stream. Connect is asynchronous: it kicks off
// establishment and returns, with progress visible through State and
// failures surfaced on the error hook. A dropped stream triggers bounded
// reconnection, fixed delay between attempts; once the budget is spent the
// session enters degraded mode and stays there until the user leaves.
type PushTransport struct {
	cfg *Config
	rec *gamestate.Reconciler
	log slog.Logger
	h   hooks
	fsm *connFSM

	seq atomic.Uint64

	mu        sync.Mutex
	conn      net.Conn
	sessionID string
	attempts  int
	retry     *time.Timer
	closed    bool
}

// NewPushTransport builds the push strategy around a reconciler.
func NewPushTransport(cfg *Config, rec *gamestate.Reconciler, log slog.Logger, h hooks) *PushTransport {
	return &PushTransport{
		cfg: cfg,
		rec: rec,
		log: log,
		h:   h,
		fsm: newConnFSM(log),
	}
}

// Connect begins establishment and returns immediately.
func (t *PushTransport) Connect(ctx context.Context) error {
	if !t.fsm.to(StateConnecting) {
		return fmt.Errorf("connect refused in state %s", t.fsm.current())
	}
	go t.establish()
	return nil
}

// establish runs one connection attempt: dial, handshake, wait for the ACK
// that assigns the session id, then join the table. The whole exchange sits
// under a single deadline; any failure hands off to the reconnect machinery.
func (t *PushTransport) establish() {
	deadline := time.Now().Add(t.cfg.EstablishTimeout)

	conn, err := net.DialTimeout("tcp", t.cfg.PushAddr, t.cfg.EstablishTimeout)
	if err != nil {
		t.scheduleReconnect(&TransportError{Op: "dial", Err: err})
		return
	}
	conn.SetDeadline(deadline)

	if !t.fsm.to(StateHandshaking) {
		conn.Close()
		return
	}

	hello := &protocol.HandshakePayload{
		PlayerID: t.cfg.PlayerID,
		Nickname: t.cfg.Nickname,
	}
	if err := t.send(conn, protocol.MsgHandshake, "", hello); err != nil {
		conn.Close()
		t.scheduleReconnect(err)
		return
	}

	// Frames before the ACK are out of order; drop them rather than
	// reconcile state for a session that may never open.
	rd := bufio.NewReaderSize(conn, protocol.MaxFrameSize)
	var sessionID string
	for sessionID == "" {
		env, err := protocol.ReadFrame(rd)
		if err != nil {
			conn.Close()
			t.scheduleReconnect(&TransportError{Op: "handshake", Err: err})
			return
		}
		p, err := protocol.DecodePayload(env)
		if err != nil {
			t.log.Warnf("dropping pre-session frame: %v", err)
			continue
		}
		switch p := p.(type) {
		case *protocol.AckPayload:
			sessionID = p.SessionID
		case *protocol.ErrorPayload:
			conn.Close()
			t.scheduleReconnect(&RejectedError{Code: p.ErrorCode, Reason: p.ErrorMessage})
			return
		default:
			t.log.Debugf("ignoring %s before handshake ack", env.Type)
		}
	}

	join := &protocol.JoinTablePayload{
		Nickname: t.cfg.Nickname,
		BuyIn:    t.cfg.BuyIn,
	}
	if err := t.send(conn, protocol.MsgJoinTable, sessionID, join); err != nil {
		conn.Close()
		t.scheduleReconnect(err)
		return
	}

	conn.SetDeadline(time.Time{})

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		conn.Close()
		return
	}
	t.conn = conn
	t.sessionID = sessionID
	t.attempts = 0
	t.mu.Unlock()

	if !t.fsm.to(StateConnected) {
		conn.Close()
		return
	}
	t.rec.MarkVerified()
	t.log.Infof("push session %s established at table %d", sessionID, t.cfg.TableID)

	go t.readLoop(conn, rd)
}

// readLoop consumes server frames until the stream breaks.
func (t *PushTransport) readLoop(conn net.Conn, rd *bufio.Reader) {
	for {
		env, err := protocol.ReadFrame(rd)
		if err != nil {
			t.mu.Lock()
			handled := t.closed || t.conn != conn
			if !handled {
				t.conn = nil
			}
			t.mu.Unlock()
			if handled {
				return
			}
			conn.Close()
			t.scheduleReconnect(&TransportError{Op: "read", Err: err})
			return
		}
		t.handle(env)
	}
}

// handle reconciles one server frame. A frame that fails to decode is logged
// and skipped; the stream itself is still healthy.
func (t *PushTransport) handle(env *protocol.Envelope) {
	p, err := protocol.DecodePayload(env)
	if err != nil {
		t.log.Warnf("dropping frame seq=%d: %v", env.SequenceNumber, err)
		return
	}
	switch p := p.(type) {
	case *protocol.GameStateUpdatePayload:
		t.rec.ApplyGameStateUpdate(p)
	case *protocol.PotUpdatePayload:
		t.rec.ApplyPotUpdate(p.Amount)
	case *protocol.BoardUpdatePayload:
		t.rec.ApplyBoardUpdate(p.Cards)
	case *protocol.TimeWarningPayload:
		t.rec.ApplyTimeWarning(p.TimeLeft)
	case *protocol.ResultPayload:
		t.rec.ApplyResult(string(p.Winner), p.Amount)
	case *protocol.ErrorPayload:
		t.h.fail(&RejectedError{Code: p.ErrorCode, Reason: p.ErrorMessage})
		return
	case *protocol.AckPayload:
		t.log.Debugf("ack seq=%d", env.SequenceNumber)
		return
	default:
		t.log.Debugf("ignoring %s frame", env.Type)
		return
	}
	t.h.update()
}

// scheduleReconnect books exactly one retry timer per outage. A single
// broken stream can be noticed by both the reader and a writer; the pending
// timer check collapses those into one counted attempt. Attempts reset on a
// successful establishment.
func (t *PushTransport) scheduleReconnect(cause error) {
	t.mu.Lock()
	if t.closed || t.retry != nil {
		t.mu.Unlock()
		return
	}
	if !t.fsm.to(StateReconnecting) {
		t.mu.Unlock()
		return
	}
	t.attempts++
	attempt := t.attempts
	if attempt > t.cfg.MaxReconnectAttempts {
		t.mu.Unlock()
		t.fsm.to(StateDegraded)
		t.rec.MarkUnverified()
		t.log.Errorf("push stream lost after %d reconnect attempts: %v",
			t.cfg.MaxReconnectAttempts, cause)
		t.h.fail(ErrReconnectExhausted)
		return
	}
	t.log.Warnf("push stream lost (%v), reconnect %d/%d in %s",
		cause, attempt, t.cfg.MaxReconnectAttempts, t.cfg.ReconnectDelay)
	t.retry = time.AfterFunc(t.cfg.ReconnectDelay, func() {
		t.mu.Lock()
		t.retry = nil
		t.mu.Unlock()
		if t.fsm.to(StateConnecting) {
			t.establish()
		}
	})
	t.mu.Unlock()
}

// SendAction writes the action envelope. Delivery is fire-and-forget: a
// server rejection arrives asynchronously as an ERROR frame on the error
// hook, not as the return value here.
func (t *PushTransport) SendAction(ctx context.Context, action protocol.OutboundAction) error {
	typ, err := action.MessageType()
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	var payload protocol.Payload
	if action.Kind.RequiresAmount() {
		payload = &protocol.ActionPayload{Amount: action.Amount}
	}
	return t.write(typ, payload)
}

// StartGame asks the server to deal the first hand.
func (t *PushTransport) StartGame(ctx context.Context) error {
	return t.write(protocol.MsgStartGame, nil)
}

// Rebuy tops up a busted stack. On this wire a seated player's JOIN_TABLE
// is an add-on for the given buy-in.
func (t *PushTransport) Rebuy(ctx context.Context, amount int64) error {
	return t.write(protocol.MsgJoinTable, &protocol.JoinTablePayload{
		Nickname: t.cfg.Nickname,
		BuyIn:    amount,
	})
}

// write builds and frames one envelope on the live connection.
func (t *PushTransport) write(typ protocol.MessageType, payload protocol.Payload) error {
	t.mu.Lock()
	conn, sessionID := t.conn, t.sessionID
	t.mu.Unlock()

	if conn == nil || !t.fsm.is(StateConnected) {
		return &TransportError{
			Op:  string(typ),
			Err: fmt.Errorf("not connected (state %s)", t.fsm.current()),
		}
	}
	env, err := protocol.NewEnvelope(typ, t.cfg.TableID,
		protocol.PlayerID(t.cfg.PlayerID), sessionID, t.seq.Add(1), payload)
	if err != nil {
		return &TransportError{Op: string(typ), Err: err}
	}

	t.mu.Lock()
	err = protocol.WriteFrame(conn, env)
	if err != nil && t.conn == conn {
		// Unpublish the stream so the read loop sees the outage as already
		// handled rather than counting it a second time.
		t.conn = nil
	}
	t.mu.Unlock()
	if err != nil {
		conn.Close()
		t.scheduleReconnect(&TransportError{Op: string(typ), Err: err})
		return &TransportError{Op: string(typ), Err: err}
	}
	return nil
}

// State returns the lifecycle state.
func (t *PushTransport) State() ConnState { return t.fsm.current() }

// Close leaves the table: best-effort LEAVE_TABLE, then the retry timer is
// stopped, the connection closed and the session id cleared. No reconnect
// fires after Close returns.
func (t *PushTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn, sessionID := t.conn, t.sessionID
	retry := t.retry
	t.conn = nil
	t.sessionID = ""
	t.retry = nil
	t.mu.Unlock()

	if retry != nil {
		retry.Stop()
	}
	if conn != nil {
		if env, err := protocol.NewEnvelope(protocol.MsgLeaveTable, t.cfg.TableID,
			protocol.PlayerID(t.cfg.PlayerID), sessionID, t.seq.Add(1), nil); err == nil {
			conn.SetWriteDeadline(time.Now().Add(time.Second))
			protocol.WriteFrame(conn, env)
		}
		conn.Close()
	}
	t.fsm.to(StateDisconnected)
	return nil
}

// send frames one envelope during establishment, before the connection is
// published.
func (t *PushTransport) send(conn net.Conn, typ protocol.MessageType, sessionID string, payload protocol.Payload) error {
	env, err := protocol.NewEnvelope(typ, t.cfg.TableID,
		protocol.PlayerID(t.cfg.PlayerID), sessionID, t.seq.Add(1), payload)
	if err != nil {
		return &TransportError{Op: string(typ), Err: err}
	}
	if err := protocol.WriteFrame(conn, env); err != nil {
		return &TransportError{Op: string(typ), Err: err}
	}
	return nil
}
