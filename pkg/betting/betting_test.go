package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePot(t *testing.T) {
	// Pot that already includes street bets: counted once, not twice.
	s := Street{ReportedPot: 3000, StreetBets: []int64{500, 500}}
	assert.Equal(t, int64(3000), EffectivePot(s))

	// Pot smaller than street bets (server netted them out differently):
	// floors at zero and degrades to the street total.
	s = Street{ReportedPot: 600, StreetBets: []int64{500, 500}}
	assert.Equal(t, int64(1000), EffectivePot(s))

	// No street bets.
	s = Street{ReportedPot: 3000}
	assert.Equal(t, int64(3000), EffectivePot(s))

	// Empty table.
	assert.Equal(t, int64(0), EffectivePot(Street{}))
}

func TestMinRaiseTotal(t *testing.T) {
	// currentBet=1000, bb=1000, stack=5000 -> max(2000, 1100) = 2000.
	s := Street{CurrentBetThisStreet: 1000, BigBlind: 1000}
	assert.Equal(t, int64(2000), MinRaiseTotal(s, 5000))

	// Tiny standing bet: one big blind on top wins over doubling, so the
	// minimum never drops below the unopened big-blind minimum.
	s = Street{CurrentBetThisStreet: 50, BigBlind: 1000}
	assert.Equal(t, int64(1050), MinRaiseTotal(s, 5000))

	// Unknown blinds facing a bet: the fixed increment is the step.
	s = Street{CurrentBetThisStreet: 50}
	assert.Equal(t, int64(150), MinRaiseTotal(s, 5000))

	// Unopened street: big blind.
	s = Street{BigBlind: 1000}
	assert.Equal(t, int64(1000), MinRaiseTotal(s, 5000))

	// Unopened street with unknown blinds: fixed floor.
	assert.Equal(t, int64(MinIncrement), MinRaiseTotal(Street{}, 5000))

	// Clamped to stack.
	s = Street{CurrentBetThisStreet: 4000, BigBlind: 1000}
	assert.Equal(t, int64(5000), MinRaiseTotal(s, 5000))
}

func TestMinRaiseTotalMonotonic(t *testing.T) {
	// Non-decreasing in the standing bet, always within [floor, stack].
	const stack = int64(20000)
	prev := int64(0)
	for bet := int64(0); bet <= 12000; bet += 100 {
		s := Street{CurrentBetThisStreet: bet, BigBlind: 1000}
		got := MinRaiseTotal(s, stack)
		require.GreaterOrEqual(t, got, prev, "bet=%d", bet)
		require.GreaterOrEqual(t, got, int64(MinIncrement))
		require.LessOrEqual(t, got, stack)
		prev = got
	}
}

func TestAmountForPotFraction(t *testing.T) {
	// pot=3000, unopened, stack=10000, fraction=0.5 -> 1500 (>= minRaise 1000).
	s := Street{ReportedPot: 3000, BigBlind: 1000}
	assert.Equal(t, int64(1500), AmountForPotFraction(s, 10000, 0.5))

	// Result below the minimum raise gets lifted to it.
	assert.Equal(t, int64(1000), AmountForPotFraction(s, 10000, 0.1))

	// Result above the stack gets capped at the stack.
	assert.Equal(t, int64(10000), AmountForPotFraction(s, 10000, 4))

	// Rounds down to the chip increment: 3000/3 = 1000 exactly, but 1/3 of
	// 3100 is 1033 and must land on 1000.
	s = Street{ReportedPot: 3100, BigBlind: 500}
	assert.Equal(t, int64(1000), AmountForPotFraction(s, 10000, 1.0/3.0))
}

func TestAmountForPotFractionBounds(t *testing.T) {
	fractions := []float64{1.0 / 3.0, 0.5, 1, 1.5}
	stacks := []int64{100, 900, 5000, 100000}
	for _, stack := range stacks {
		for _, f := range fractions {
			s := Street{
				ReportedPot:          7300,
				CurrentBetThisStreet: 1000,
				StreetBets:           []int64{1000, 400},
				BigBlind:             1000,
			}
			got := AmountForPotFraction(s, stack, f)
			require.LessOrEqual(t, got, stack)
			min := MinRaiseTotal(s, stack)
			if got != stack {
				require.GreaterOrEqual(t, got, min, "stack=%d f=%v", stack, f)
			}
		}
	}
}

func TestIsAllIn(t *testing.T) {
	assert.True(t, IsAllIn(500, 500))
	assert.True(t, IsAllIn(600, 500))
	assert.False(t, IsAllIn(499, 500))
	assert.False(t, IsAllIn(0, 0)) // busted stack is not an all-in
}
