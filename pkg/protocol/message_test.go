package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelopeCarriesIdentity(t *testing.T) {
	env, err := NewEnvelope(MsgRaise, 7, "p1", "s-1", 3, &ActionPayload{Amount: 2000})
	require.NoError(t, err)

	assert.NotEmpty(t, env.MessageID)
	assert.Equal(t, MsgRaise, env.Type)
	assert.NotZero(t, env.Timestamp)
	assert.Equal(t, int64(7), env.TableID)
	assert.Equal(t, PlayerID("p1"), env.PlayerID)
	assert.Equal(t, "s-1", env.SessionID)
	assert.Equal(t, uint64(3), env.SequenceNumber)

	p, err := DecodePayload(env)
	require.NoError(t, err)
	assert.Equal(t, &ActionPayload{Amount: 2000}, p)
}

func TestDecodePayloadVariants(t *testing.T) {
	tests := []struct {
		typ     MessageType
		payload string
		want    Payload
	}{
		{MsgAck, `{"sessionId":"s-9"}`, &AckPayload{SessionID: "s-9"}},
		{MsgPotUpdate, `{"amount":4500}`, &PotUpdatePayload{Amount: 4500}},
		{MsgTimeWarning, `{"timeLeft":10000}`, &TimeWarningPayload{TimeLeft: 10000}},
		{MsgResult, `{"winner":2,"amount":9000}`, &ResultPayload{Winner: "2", Amount: 9000}},
		{MsgBoardUpdate, `{"cards":["As","Kd","2c"]}`, &BoardUpdatePayload{Cards: []Card{
			{Rank: RankAce, Suit: SuitSpades},
			{Rank: RankKing, Suit: SuitDiamonds},
			{Rank: RankTwo, Suit: SuitClubs},
		}}},
	}
	for _, tc := range tests {
		env := &Envelope{Type: tc.typ, Payload: json.RawMessage(tc.payload)}
		p, err := DecodePayload(env)
		require.NoError(t, err, tc.typ)
		assert.Equal(t, tc.want, p, tc.typ)
	}
}

func TestDecodePayloadUnknownType(t *testing.T) {
	_, err := DecodePayload(&Envelope{Type: "TELEPORT"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEPORT")
}

func TestDecodePayloadErrorFallsBackToEnvelope(t *testing.T) {
	env := &Envelope{
		Type:         MsgError,
		ErrorCode:    "NOT_YOUR_TURN",
		ErrorMessage: "wait for your turn",
	}
	p, err := DecodePayload(env)
	require.NoError(t, err)
	ep, ok := p.(*ErrorPayload)
	require.True(t, ok)
	assert.Equal(t, "NOT_YOUR_TURN", ep.ErrorCode)
	assert.Equal(t, "wait for your turn", ep.ErrorMessage)
}

func TestDecodeGameStateUpdateDistinguishesAbsentFromZero(t *testing.T) {
	env := &Envelope{
		Type:    MsgGameStateUpdate,
		Payload: json.RawMessage(`{"totalPotSize":0,"state":"FLOP"}`),
	}
	p, err := DecodePayload(env)
	require.NoError(t, err)
	up := p.(*GameStateUpdatePayload)

	require.NotNil(t, up.TotalPotSize)
	assert.Zero(t, *up.TotalPotSize)
	require.NotNil(t, up.State)
	assert.Equal(t, StateFlop, *up.State)
	assert.Nil(t, up.CurrentBetThisStreet)
	assert.Nil(t, up.NextToActSeat)
}

func TestFrameRoundTrip(t *testing.T) {
	env, err := NewEnvelope(MsgJoinTable, 7, "p1", "", 1,
		&JoinTablePayload{Nickname: "alice", BuyIn: 100000})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, env))
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))

	back, err := ReadFrame(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, env.MessageID, back.MessageID)
	assert.Equal(t, env.Type, back.Type)
	assert.Equal(t, env.SequenceNumber, back.SequenceNumber)
}

func TestReadFrameRejectsOversized(t *testing.T) {
	huge := `{"messageId":"x","padding":"` + strings.Repeat("a", MaxFrameSize) + `"}` + "\n"
	_, err := ReadFrame(bufio.NewReaderSize(strings.NewReader(huge), MaxFrameSize*2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestReadFrameCapsUnterminatedStream(t *testing.T) {
	// No delimiter ever arrives; the cap must fire while reading, well
	// before the stream is exhausted.
	src := strings.NewReader(strings.Repeat("a", MaxFrameSize*3))
	_, err := ReadFrame(bufio.NewReaderSize(src, 4096))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestReadFrameRejectsMalformedJSON(t *testing.T) {
	_, err := ReadFrame(bufio.NewReader(strings.NewReader("{nope\n")))
	assert.Error(t, err)
}

func TestActionMessageTypes(t *testing.T) {
	for kind, want := range map[ActionKind]MessageType{
		ActionCheck: MsgCheck, ActionCall: MsgCall, ActionFold: MsgFold,
		ActionBet: MsgBet, ActionRaise: MsgRaise, ActionAllIn: MsgAllIn,
	} {
		got, err := OutboundAction{Kind: kind}.MessageType()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := OutboundAction{Kind: "SHOVE"}.MessageType()
	assert.Error(t, err)
}
