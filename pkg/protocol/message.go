package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType discriminates push-transport envelopes.
type MessageType string

const (
	// Client -> server.
	MsgHandshake  MessageType = "HANDSHAKE"
	MsgJoinTable  MessageType = "JOIN_TABLE"
	MsgLeaveTable MessageType = "LEAVE_TABLE"
	MsgStartGame  MessageType = "START_GAME"
	MsgCheck      MessageType = "CHECK"
	MsgCall       MessageType = "CALL"
	MsgFold       MessageType = "FOLD"
	MsgBet        MessageType = "BET"
	MsgRaise      MessageType = "RAISE"
	MsgAllIn      MessageType = "ALL_IN"

	// Server -> client.
	MsgAck             MessageType = "ACK"
	MsgGameStateUpdate MessageType = "GAME_STATE_UPDATE"
	MsgPotUpdate       MessageType = "POT_UPDATE"
	MsgBoardUpdate     MessageType = "BOARD_UPDATE"
	MsgTimeWarning     MessageType = "TIME_WARNING"
	MsgResult          MessageType = "RESULT"
	MsgError           MessageType = "ERROR"
)

// Envelope is the framing shared by every push message. MessageID is unique
// per client lifetime, SequenceNumber is monotonic per connection, and
// SessionID is empty until the handshake ACK assigns one.
type Envelope struct {
	MessageID      string          `json:"messageId"`
	Type           MessageType     `json:"type"`
	Timestamp      int64           `json:"timestamp"`
	TableID        int64           `json:"tableId,omitempty"`
	PlayerID       PlayerID        `json:"playerId,omitempty"`
	SessionID      string          `json:"sessionId,omitempty"`
	SequenceNumber uint64          `json:"sequenceNumber"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	ErrorCode      string          `json:"errorCode,omitempty"`
	ErrorMessage   string          `json:"errorMessage,omitempty"`
}

// Payload is the sealed union over per-type message bodies. Every variant is
// declared below; DecodePayload matches the set exhaustively so an unknown
// type is an error rather than a silently ignored default.
type Payload interface {
	messageType() MessageType
}

// HandshakePayload opens a session.
type HandshakePayload struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname,omitempty"`
}

func (HandshakePayload) messageType() MessageType { return MsgHandshake }

// JoinTablePayload seats the player.
type JoinTablePayload struct {
	Nickname string `json:"nickname"`
	BuyIn    int64  `json:"buyIn"`
}

func (JoinTablePayload) messageType() MessageType { return MsgJoinTable }

// ActionPayload carries the chip amount for BET and RAISE.
type ActionPayload struct {
	Amount int64 `json:"amount,omitempty"`
}

func (ActionPayload) messageType() MessageType { return MsgBet }

// AckPayload acknowledges a handshake and assigns the session id.
type AckPayload struct {
	SessionID string `json:"sessionId"`
}

func (AckPayload) messageType() MessageType { return MsgAck }

// GameStateUpdatePayload is a partial snapshot. Scalars are pointers so a
// merge can tell "absent" from "zero"; nil means leave the current value.
type GameStateUpdatePayload struct {
	State                *TableState           `json:"state,omitempty"`
	TotalPotSize         *int64                `json:"totalPotSize,omitempty"`
	PotBreakdown         []PotShare            `json:"potBreakdown,omitempty"`
	CurrentBetThisStreet *int64                `json:"currentBetThisStreet,omitempty"`
	NextToActSeat        *int                  `json:"nextToActSeat,omitempty"`
	ActionDeadline       *int64                `json:"actionDeadline,omitempty"`
	ButtonSeat           *int                  `json:"buttonSeat,omitempty"`
	SmallBlindSeat       *int                  `json:"smallBlindSeat,omitempty"`
	BigBlindSeat         *int                  `json:"bigBlindSeat,omitempty"`
	SmallBlindAmount     *int64                `json:"smallBlindAmount,omitempty"`
	BigBlindAmount       *int64                `json:"bigBlindAmount,omitempty"`
	Players              map[string]PlayerView `json:"players,omitempty"`
	CurrentHand          *HandInfo             `json:"currentHand,omitempty"`
}

func (GameStateUpdatePayload) messageType() MessageType { return MsgGameStateUpdate }

// PotUpdatePayload replaces the total pot.
type PotUpdatePayload struct {
	Amount int64 `json:"amount"`
}

func (PotUpdatePayload) messageType() MessageType { return MsgPotUpdate }

// BoardUpdatePayload replaces the community cards.
type BoardUpdatePayload struct {
	Cards []Card `json:"cards"`
}

func (BoardUpdatePayload) messageType() MessageType { return MsgBoardUpdate }

// TimeWarningPayload announces the remaining action time in milliseconds.
type TimeWarningPayload struct {
	TimeLeft int64 `json:"timeLeft"`
}

func (TimeWarningPayload) messageType() MessageType { return MsgTimeWarning }

// ResultPayload announces a hand result.
type ResultPayload struct {
	Winner PlayerID `json:"winner"`
	Amount int64    `json:"amount"`
}

func (ResultPayload) messageType() MessageType { return MsgResult }

// ErrorPayload reports a server-side rejection or fault.
type ErrorPayload struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func (ErrorPayload) messageType() MessageType { return MsgError }

// emptyPayload covers message types that carry no body.
type emptyPayload struct{}

func (emptyPayload) messageType() MessageType { return "" }

// DecodePayload decodes the envelope body into its typed variant. The switch
// covers every declared MessageType; anything else is a protocol error.
func DecodePayload(env *Envelope) (Payload, error) {
	decode := func(v Payload) (Payload, error) {
		if len(env.Payload) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(env.Payload, v); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return v, nil
	}

	switch env.Type {
	case MsgHandshake:
		return decode(&HandshakePayload{})
	case MsgJoinTable:
		return decode(&JoinTablePayload{})
	case MsgBet, MsgRaise:
		return decode(&ActionPayload{})
	case MsgCheck, MsgCall, MsgFold, MsgAllIn, MsgLeaveTable, MsgStartGame:
		return emptyPayload{}, nil
	case MsgAck:
		return decode(&AckPayload{})
	case MsgGameStateUpdate:
		return decode(&GameStateUpdatePayload{})
	case MsgPotUpdate:
		return decode(&PotUpdatePayload{})
	case MsgBoardUpdate:
		return decode(&BoardUpdatePayload{})
	case MsgTimeWarning:
		return decode(&TimeWarningPayload{})
	case MsgResult:
		return decode(&ResultPayload{})
	case MsgError:
		p := &ErrorPayload{}
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, p); err != nil {
				return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
			}
		}
		// Older servers put the error on the envelope itself.
		if p.ErrorCode == "" {
			p.ErrorCode = env.ErrorCode
		}
		if p.ErrorMessage == "" {
			p.ErrorMessage = env.ErrorMessage
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown message type %q", env.Type)
}

// NewEnvelope builds a client->server envelope. The sequence number is owned
// by the connection and passed in; the message id is unique per process.
func NewEnvelope(typ MessageType, tableID int64, playerID PlayerID, sessionID string, seq uint64, payload Payload) (*Envelope, error) {
	env := &Envelope{
		MessageID:      uuid.NewString(),
		Type:           typ,
		Timestamp:      time.Now().UnixMilli(),
		TableID:        tableID,
		PlayerID:       playerID,
		SessionID:      sessionID,
		SequenceNumber: seq,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", typ, err)
		}
		env.Payload = raw
	}
	return env, nil
}
