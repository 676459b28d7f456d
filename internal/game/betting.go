package game

// bettingRound tracks one street's betting: the price to play, the
// last full-raise increment, and who has acted since that increment
// last changed.
type bettingRound struct {
	currentBet int
	minRaise   int
	aggressor  int
	acted      []bool
	bigBlind   int
}

func newBettingRound(seats, bigBlind int) *bettingRound {
	return &bettingRound{
		minRaise:  bigBlind,
		aggressor: -1,
		acted:     make([]bool, seats),
		bigBlind:  bigBlind,
	}
}

// reset prepares the tracker for a fresh street. The minimum raise
// returns to the big blind until the first bet sets a new increment.
func (b *bettingRound) reset() {
	b.currentBet = 0
	b.minRaise = b.bigBlind
	b.aggressor = -1
	for i := range b.acted {
		b.acted[i] = false
	}
}

// context builds the validator's view for a seat about to act.
func (b *bettingRound) context(seat int) Context {
	return Context{
		CurrentBet:   b.currentBet,
		MinimumRaise: b.minRaise,
		RaiseAllowed: !b.acted[seat],
	}
}

// observe folds a seat's new street total into the round state after
// an action has been applied. A full raise re-opens betting: everyone
// else owes another action and the minimum raise grows to the raise's
// increment. A short all-in moves the price without re-opening.
func (b *bettingRound) observe(seat int, p PlayerInfo) {
	if p.CurrentBet > b.currentBet {
		increment := p.CurrentBet - b.currentBet
		b.currentBet = p.CurrentBet
		if increment >= b.minRaise {
			b.minRaise = increment
			b.aggressor = seat
			for i := range b.acted {
				b.acted[i] = false
			}
		}
	}
	b.acted[seat] = true
}

// postBlind records a forced post. Blinds can set the price but never
// mark the poster as having acted, which is what gives the big blind
// its preflop option.
func (b *bettingRound) postBlind(p PlayerInfo) {
	if p.CurrentBet > b.currentBet {
		b.currentBet = p.CurrentBet
	}
}

// complete reports whether the street's betting is finished: every
// seat that can still act has matched the price and acted since the
// last full raise.
func (b *bettingRound) complete(players []PlayerInfo) bool {
	pending, lone := 0, -1
	for i, p := range players {
		if p.CanAct() {
			pending++
			lone = i
		}
	}
	switch pending {
	case 0:
		return true
	case 1:
		// A lone live seat owes a response only to an unmatched bet.
		return players[lone].CurrentBet == b.currentBet
	}
	for i, p := range players {
		if !p.CanAct() {
			continue
		}
		if p.CurrentBet != b.currentBet || !b.acted[i] {
			return false
		}
	}
	return true
}
