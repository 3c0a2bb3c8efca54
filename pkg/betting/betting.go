// Package betting derives legal bet ranges and sizing presets from table
// state. Everything here is pure: the same inputs always give the same
// outputs and nothing touches a transport or store. The math mirrors the
// server's raise-sizing rule exactly; offering an amount the server rejects
// is a client bug.
package betting

// MinIncrement is the smallest chip denomination and the fixed raise floor,
// in minor currency units.
const MinIncrement = 100

// Street is the slice of a table snapshot the calculator needs: the reported
// pot, the street's standing bet, each seated player's current-street bet and
// the big blind.
type Street struct {
	ReportedPot          int64
	CurrentBetThisStreet int64
	StreetBets           []int64
	BigBlind             int64
}

func (s Street) streetBetTotal() int64 {
	var total int64
	for _, b := range s.StreetBets {
		total += b
	}
	return total
}

// EffectivePot is the total at stake for pot-fraction sizing. Servers differ
// on whether the reported pot already includes the current street's bets, so
// the street total is subtracted (floored at zero) and added back, counting
// those chips exactly once. If a server nets out street bets differently this
// degrades toward undershooting, never double-counting.
func EffectivePot(s Street) int64 {
	streetTotal := s.streetBetTotal()
	potWithoutStreet := s.ReportedPot - streetTotal
	if potWithoutStreet < 0 {
		potWithoutStreet = 0
	}
	return potWithoutStreet + streetTotal
}

// MinRaiseTotal is the minimum absolute total for a raise (or opening bet),
// clamped to [MinIncrement, stack]. Facing a bet, the minimum is the larger
// of double the standing bet and the standing bet plus one big blind (or the
// fixed increment when blinds are unknown); unopened, it is the big blind
// (or the floor). The result never decreases as the standing bet grows.
func MinRaiseTotal(s Street, stack int64) int64 {
	var min int64
	if s.CurrentBetThisStreet > 0 {
		step := s.BigBlind
		if step < MinIncrement {
			step = MinIncrement
		}
		min = s.CurrentBetThisStreet * 2
		if alt := s.CurrentBetThisStreet + step; alt > min {
			min = alt
		}
	} else {
		min = s.BigBlind
		if min < MinIncrement {
			min = MinIncrement
		}
	}
	if min < MinIncrement {
		min = MinIncrement
	}
	if min > stack {
		min = stack
	}
	return min
}

// AmountForPotFraction sizes a bet at the given fraction of the effective
// pot, rounded down to the chip increment and clamped to
// [MinRaiseTotal, stack]. Rounding down guarantees the result never exceeds
// the stack before clamping.
func AmountForPotFraction(s Street, stack int64, fraction float64) int64 {
	raw := int64(float64(EffectivePot(s))*fraction) / MinIncrement * MinIncrement
	min := MinRaiseTotal(s, stack)
	if raw < min {
		raw = min
	}
	if raw > stack {
		raw = stack
	}
	return raw
}

// IsAllIn reports whether the amount commits the player's entire stack.
func IsAllIn(amount, stack int64) bool {
	return amount >= stack && stack > 0
}
