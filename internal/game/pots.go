package game

import (
	"slices"
	"sort"
)

// Pot is one layer of the pot plus the seats entitled to win it,
// ordered clockwise from the button so odd chips go to the earliest
// position.
type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible_players"`
}

// Ledger tracks each seat's cumulative chip contribution to one hand.
// Pots are never stored: they are a pure function of contributions
// and who is still active, recomputed at every street end and once
// more before distribution, so a fold late in the hand removes the
// folder from every layer.
type Ledger struct {
	contributions []int
}

// NewLedger creates an empty ledger for the given number of seats.
func NewLedger(seats int) *Ledger {
	return &Ledger{contributions: make([]int, seats)}
}

// Contribute records chips moving from a seat's stack into the hand.
func (l *Ledger) Contribute(seat, amount int) {
	l.contributions[seat] += amount
}

// Contribution returns a seat's cumulative contribution.
func (l *Ledger) Contribution(seat int) int {
	return l.contributions[seat]
}

// Total returns every chip contributed to the hand so far.
func (l *Ledger) Total() int {
	total := 0
	for _, c := range l.contributions {
		total += c
	}
	return total
}

// drain empties the ledger once its chips have been paid back out to
// stacks.
func (l *Ledger) drain() {
	for i := range l.contributions {
		l.contributions[i] = 0
	}
}

// ReturnUncalled refunds the uncalled portion of a street's final
// bet. When exactly one seat's street bet exceeds every other seat's,
// no one matched the excess and it goes back to the bettor's stack
// before pots are built. Forced posts are exempt: a blind is
// forfeited up to its full amount even when nobody matched it, so a
// walk pays the big blind the whole pot rather than refunding the
// difference. A seat whose all-in is partly refunded has chips behind
// again and is no longer all-in. Returns the refunded seat and
// amount, or (-1, 0) when every bet was matched.
func (l *Ledger) ReturnUncalled(players []PlayerInfo, forced []int) (int, int) {
	top, second, seat := 0, 0, -1
	for i, p := range players {
		switch {
		case p.CurrentBet > top:
			second = top
			top = p.CurrentBet
			seat = i
		case p.CurrentBet == top:
			second = top
			seat = -1
		case p.CurrentBet > second:
			second = p.CurrentBet
		}
	}
	if seat < 0 {
		return -1, 0
	}
	matched := second
	if forced != nil && forced[seat] > matched {
		matched = forced[seat]
	}
	if top <= matched {
		return -1, 0
	}

	excess := top - matched
	p := &players[seat]
	p.Stack += excess
	p.CurrentBet = matched
	l.contributions[seat] -= excess
	if p.AllIn && p.Stack > 0 {
		p.AllIn = false
	}
	return seat, excess
}

// Reconcile decomposes contributions into a main pot and side pots.
// Every distinct contribution total is a layer boundary; each layer
// holds its width times the number of seats that contributed at least
// that much, folded seats included. Eligibility excludes folds.
// Adjacent layers with identical eligibility merge into one pot.
func (l *Ledger) Reconcile(players []PlayerInfo, button int) []Pot {
	levels := make([]int, 0, len(l.contributions))
	for _, c := range l.contributions {
		if c > 0 {
			levels = append(levels, c)
		}
	}
	if len(levels) == 0 {
		return nil
	}
	sort.Ints(levels)
	levels = slices.Compact(levels)

	var pots []Pot
	prev := 0
	for _, level := range levels {
		contributors := 0
		var eligible []int
		for k := 1; k <= len(players); k++ {
			seat := (button + k) % len(players)
			if l.contributions[seat] >= level {
				contributors++
				if players[seat].Active {
					eligible = append(eligible, seat)
				}
			}
		}
		amount := (level - prev) * contributors
		prev = level

		if n := len(pots); n > 0 && slices.Equal(pots[n-1].Eligible, eligible) {
			pots[n-1].Amount += amount
			continue
		}
		pots = append(pots, Pot{Amount: amount, Eligible: eligible})
	}
	return pots
}
