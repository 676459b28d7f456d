package bots

import (
	rand "math/rand/v2"

	"github.com/botfelt/botfelt/internal/deck"
	"github.com/botfelt/botfelt/internal/game"
)

// Folder surrenders every hand: it checks when free and folds to any
// bet. The baseline every other strategy has to beat.
type Folder struct {
	seat int
}

// NewFolder creates a Folder for the given seat.
func NewFolder(seat int) *Folder {
	return &Folder{seat: seat}
}

// Decide implements game.Agent.
func (f *Folder) Decide(state *game.PublicState, _ []deck.Card) (game.ActionType, int) {
	if state.ToCall(f.seat) > 0 {
		return game.Fold, 0
	}
	return game.Check, 0
}

// CallingStation matches any bet and never bets itself.
type CallingStation struct {
	seat int
}

// NewCallingStation creates a CallingStation for the given seat.
func NewCallingStation(seat int) *CallingStation {
	return &CallingStation{seat: seat}
}

// Decide implements game.Agent.
func (c *CallingStation) Decide(state *game.PublicState, _ []deck.Card) (game.ActionType, int) {
	if toCall := state.ToCall(c.seat); toCall > 0 {
		return game.Call, toCall
	}
	return game.Check, 0
}

// MinRaiser applies maximum pressure at minimum price: it opens for
// the minimum, raises the minimum over any bet, and calls when its
// stack no longer covers a raise.
type MinRaiser struct {
	seat int
}

// NewMinRaiser creates a MinRaiser for the given seat.
func NewMinRaiser(seat int) *MinRaiser {
	return &MinRaiser{seat: seat}
}

// Decide implements game.Agent.
func (m *MinRaiser) Decide(state *game.PublicState, _ []deck.Card) (game.ActionType, int) {
	legal := state.Legal(m.seat)
	switch {
	case legal.Bet:
		return game.Bet, legal.MinBet
	case legal.Raise:
		return game.Raise, legal.MinRaise
	case legal.Call:
		return game.Call, legal.CallAmount
	default:
		return game.Check, 0
	}
}

// AllIn shoves every decision.
type AllIn struct {
	seat int
}

// NewAllIn creates an AllIn for the given seat.
func NewAllIn(seat int) *AllIn {
	return &AllIn{seat: seat}
}

// Decide implements game.Agent.
func (a *AllIn) Decide(state *game.PublicState, _ []deck.Card) (game.ActionType, int) {
	return game.AllIn, state.Players[a.seat].Stack
}

// Random picks uniformly among its legal actions, with uniform sizing
// for bets and raises. Chaos on purpose: it wanders into every edge
// the validator has.
type Random struct {
	seat int
	rng  *rand.Rand
}

// NewRandom creates a Random for the given seat driven by rng.
func NewRandom(seat int, rng *rand.Rand) *Random {
	return &Random{seat: seat, rng: rng}
}

// Decide implements game.Agent.
func (r *Random) Decide(state *game.PublicState, _ []deck.Card) (game.ActionType, int) {
	type pick struct {
		action game.ActionType
		amount int
	}
	legal := state.Legal(r.seat)

	picks := []pick{{game.Fold, 0}}
	if legal.Check {
		picks = append(picks, pick{game.Check, 0})
	}
	if legal.Call {
		picks = append(picks, pick{game.Call, legal.CallAmount})
	}
	if legal.Bet {
		picks = append(picks, pick{game.Bet, between(r.rng, legal.MinBet, legal.MaxBet)})
	}
	if legal.Raise {
		picks = append(picks, pick{game.Raise, between(r.rng, legal.MinRaise, legal.MaxRaise)})
	}

	chosen := picks[r.rng.IntN(len(picks))]
	return chosen.action, chosen.amount
}

// between returns a uniform value in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}
