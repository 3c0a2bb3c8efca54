package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Rank of a playing card. Zero is invalid so an unset Card is detectable.
type Rank int

const (
	RankTwo Rank = iota + 2
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
	RankAce
)

// Suit of a playing card.
type Suit int

const (
	SuitClubs Suit = iota + 1
	SuitDiamonds
	SuitHearts
	SuitSpades
)

// Card is the normalized form shared by both transports. The server may send
// a card either as a structured {"rank":"ACE","suit":"SPADE"} object or as a
// compact two-character code like "As"; both decode to the same Card.
type Card struct {
	Rank Rank
	Suit Suit
}

// Valid reports whether the card holds a real rank and suit. Snapshots can
// contain null placeholders for undealt cards; those decode to the zero Card.
func (c Card) Valid() bool {
	return c.Rank >= RankTwo && c.Rank <= RankAce &&
		c.Suit >= SuitClubs && c.Suit <= SuitSpades
}

var rankNames = map[string]Rank{
	"TWO": RankTwo, "THREE": RankThree, "FOUR": RankFour, "FIVE": RankFive,
	"SIX": RankSix, "SEVEN": RankSeven, "EIGHT": RankEight, "NINE": RankNine,
	"TEN": RankTen, "JACK": RankJack, "QUEEN": RankQueen, "KING": RankKing,
	"ACE": RankAce,
}

var suitNames = map[string]Suit{
	"CLUB": SuitClubs, "DIAMOND": SuitDiamonds, "HEART": SuitHearts, "SPADE": SuitSpades,
	"CLUBS": SuitClubs, "DIAMONDS": SuitDiamonds, "HEARTS": SuitHearts, "SPADES": SuitSpades,
}

func charToRank(ch byte) (Rank, bool) {
	u := ch
	if u >= 'a' && u <= 'z' {
		u -= 'a' - 'A'
	}
	switch u {
	case '2':
		return RankTwo, true
	case '3':
		return RankThree, true
	case '4':
		return RankFour, true
	case '5':
		return RankFive, true
	case '6':
		return RankSix, true
	case '7':
		return RankSeven, true
	case '8':
		return RankEight, true
	case '9':
		return RankNine, true
	case 'T':
		return RankTen, true
	case 'J':
		return RankJack, true
	case 'Q':
		return RankQueen, true
	case 'K':
		return RankKing, true
	case 'A':
		return RankAce, true
	}
	return 0, false
}

func charToSuit(ch byte) (Suit, bool) {
	u := ch
	if u >= 'A' && u <= 'Z' {
		u += 'a' - 'A'
	}
	switch u {
	case 'c':
		return SuitClubs, true
	case 'd':
		return SuitDiamonds, true
	case 'h':
		return SuitHearts, true
	case 's':
		return SuitSpades, true
	}
	return 0, false
}

func (r Rank) String() string {
	switch r {
	case RankTen:
		return "10"
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	case RankAce:
		return "A"
	}
	if r >= RankTwo && r <= RankNine {
		return string(rune('0' + int(r)))
	}
	return "?"
}

func (s Suit) String() string {
	switch s {
	case SuitClubs:
		return "♣"
	case SuitDiamonds:
		return "♦"
	case SuitHearts:
		return "♥"
	case SuitSpades:
		return "♠"
	}
	return "?"
}

// String returns the display form, e.g. "A♠" or "10♥".
func (c Card) String() string {
	if !c.Valid() {
		return "?"
	}
	return c.Rank.String() + c.Suit.String()
}

// Code returns the compact two-character wire code, e.g. "As", "Th".
func (c Card) Code() string {
	if !c.Valid() {
		return "??"
	}
	var r byte
	switch c.Rank {
	case RankTen:
		r = 'T'
	case RankJack:
		r = 'J'
	case RankQueen:
		r = 'Q'
	case RankKing:
		r = 'K'
	case RankAce:
		r = 'A'
	default:
		r = byte('0' + int(c.Rank))
	}
	var s byte
	switch c.Suit {
	case SuitClubs:
		s = 'c'
	case SuitDiamonds:
		s = 'd'
	case SuitHearts:
		s = 'h'
	case SuitSpades:
		s = 's'
	}
	return string([]byte{r, s})
}

// MarshalJSON encodes the compact code form.
func (c Card) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(c.Code())
}

// cardObject is the structured wire form used by the REST snapshot endpoint.
type cardObject struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// UnmarshalJSON accepts null, a two-character code ("As", "th", also "10h"),
// or a structured {"rank","suit"} object. Nulls decode to the zero Card.
func (c *Card) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" {
		*c = Card{}
		return nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var obj cardObject
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		rank, ok := rankNames[strings.ToUpper(obj.Rank)]
		if !ok {
			return fmt.Errorf("invalid rank name %q", obj.Rank)
		}
		suit, ok := suitNames[strings.ToUpper(obj.Suit)]
		if !ok {
			return fmt.Errorf("invalid suit name %q", obj.Suit)
		}
		c.Rank, c.Suit = rank, suit
		return nil
	}

	var code string
	if err := json.Unmarshal(b, &code); err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	// "10h" is tolerated even though the canonical ten is 'T'.
	if len(code) == 3 && code[0] == '1' && code[1] == '0' {
		code = "T" + code[2:]
	}
	if len(code) != 2 {
		return fmt.Errorf("invalid card literal %q (want 2 chars like As, Td)", code)
	}
	rank, ok := charToRank(code[0])
	if !ok {
		return fmt.Errorf("invalid rank char %q", code[0])
	}
	suit, ok := charToSuit(code[1])
	if !ok {
		return fmt.Errorf("invalid suit char %q (use c/d/h/s)", code[1])
	}
	c.Rank, c.Suit = rank, suit
	return nil
}

// FormatCards is a helper for displaying a card list.
func FormatCards(cards []Card) string {
	if len(cards) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}
