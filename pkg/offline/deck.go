package offline

import (
	"math/rand"

	"github.com/wepoker/tablesync/pkg/protocol"
)

// Deck is a shuffled 52-card deck for local practice hands.
type Deck struct {
	cards []protocol.Card
}

// NewDeck builds a full deck shuffled with the given seed. A fixed seed gives
// a reproducible deal, which the tests rely on.
func NewDeck(seed int64) *Deck {
	cards := make([]protocol.Card, 0, 52)
	for suit := protocol.SuitClubs; suit <= protocol.SuitSpades; suit++ {
		for rank := protocol.RankTwo; rank <= protocol.RankAce; rank++ {
			cards = append(cards, protocol.Card{Rank: rank, Suit: suit})
		}
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards}
}

// Draw removes and returns the top n cards.
func (d *Deck) Draw(n int) []protocol.Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	drawn := d.cards[:n]
	d.cards = d.cards[n:]
	return drawn
}

// Remaining reports how many cards are left.
func (d *Deck) Remaining() int { return len(d.cards) }
