package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardUnmarshalCodes(t *testing.T) {
	tests := []struct {
		in   string
		want Card
	}{
		{`"As"`, Card{Rank: RankAce, Suit: SuitSpades}},
		{`"th"`, Card{Rank: RankTen, Suit: SuitHearts}},
		{`"10h"`, Card{Rank: RankTen, Suit: SuitHearts}},
		{`"2C"`, Card{Rank: RankTwo, Suit: SuitClubs}},
		{`"Kd"`, Card{Rank: RankKing, Suit: SuitDiamonds}},
		{`null`, Card{}},
		{`{"rank":"ACE","suit":"SPADE"}`, Card{Rank: RankAce, Suit: SuitSpades}},
		{`{"rank":"ten","suit":"hearts"}`, Card{Rank: RankTen, Suit: SuitHearts}},
	}
	for _, tc := range tests {
		var c Card
		require.NoError(t, json.Unmarshal([]byte(tc.in), &c), tc.in)
		assert.Equal(t, tc.want, c, tc.in)
	}
}

func TestCardUnmarshalRejectsGarbage(t *testing.T) {
	for _, in := range []string{`"Ax"`, `"1h"`, `"hello"`, `{"rank":"ELEVEN","suit":"SPADE"}`, `{"rank":"ACE","suit":"STARS"}`} {
		var c Card
		assert.Error(t, json.Unmarshal([]byte(in), &c), in)
	}
}

func TestCardMarshalRoundTrip(t *testing.T) {
	c := Card{Rank: RankQueen, Suit: SuitDiamonds}
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `"Qd"`, string(b))

	var back Card
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, c, back)

	// Invalid cards serialize as null placeholders.
	b, err = json.Marshal(Card{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestCardDisplay(t *testing.T) {
	assert.Equal(t, "A♠", Card{Rank: RankAce, Suit: SuitSpades}.String())
	assert.Equal(t, "10♥", Card{Rank: RankTen, Suit: SuitHearts}.String())
	assert.Equal(t, "?", Card{}.String())

	assert.Equal(t, "None", FormatCards(nil))
	assert.Equal(t, "A♠ K♦", FormatCards([]Card{
		{Rank: RankAce, Suit: SuitSpades},
		{Rank: RankKing, Suit: SuitDiamonds},
	}))
}

func TestPlayerIDNumberOrString(t *testing.T) {
	var id PlayerID
	require.NoError(t, json.Unmarshal([]byte(`"42"`), &id))
	assert.Equal(t, PlayerID("42"), id)

	require.NoError(t, json.Unmarshal([]byte(`42`), &id))
	assert.Equal(t, PlayerID("42"), id)

	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	assert.Equal(t, PlayerID(""), id)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "123.45", FormatAmount(12345))
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "10.00", FormatAmount(1000))
	assert.Equal(t, "-5.00", FormatAmount(-500))
}
