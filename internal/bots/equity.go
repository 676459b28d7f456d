package bots

import (
	rand "math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/botfelt/botfelt/internal/deck"
	"github.com/botfelt/botfelt/internal/evaluator"
	"github.com/botfelt/botfelt/internal/game"
	"github.com/botfelt/botfelt/internal/randutil"
)

// Sampling configuration. More trials sharpen the estimate; the
// workers split them evenly.
const (
	equityTrials  = 2048
	equityWorkers = 4
)

// Equity estimates its chance of winning at showdown by Monte Carlo
// rollout against random opponent holdings, then prices its action:
// fold when the pot odds beat the estimate, call when the estimate
// beats the odds, bet and raise when clearly ahead of the field.
type Equity struct {
	seat int
	rng  *rand.Rand
}

// NewEquity creates an Equity bot for the given seat driven by rng.
func NewEquity(seat int, rng *rand.Rand) *Equity {
	return &Equity{seat: seat, rng: rng}
}

// Decide implements game.Agent.
func (e *Equity) Decide(state *game.PublicState, hole []deck.Card) (game.ActionType, int) {
	if len(hole) != 2 {
		return game.Check, 0
	}
	opponents := state.ActiveSeats() - 1
	if opponents < 1 {
		opponents = 1
	}
	equity := e.estimate(hole, state.Community, opponents)

	legal := state.Legal(e.seat)
	toCall := state.ToCall(e.seat)

	// Live street bets still sit with the players, so the real prize
	// is the sealed pot plus everything committed this street.
	pot := state.TotalPot
	for _, p := range state.Players {
		pot += p.CurrentBet
	}

	if toCall == 0 {
		switch {
		case equity > 0.85 && legal.Raise:
			// The big blind's option, holding a monster.
			return game.Raise, clamp(pot/2, legal.MinRaise, legal.MaxRaise)
		case equity > 0.60 && legal.Bet:
			return game.Bet, clamp(pot*2/3, legal.MinBet, legal.MaxBet)
		default:
			return game.Check, 0
		}
	}

	odds := float64(toCall) / float64(pot+toCall)
	switch {
	case equity > 0.85 && legal.Raise:
		return game.Raise, clamp(pot/2, legal.MinRaise, legal.MaxRaise)
	case equity >= odds:
		return game.Call, toCall
	default:
		return game.Fold, 0
	}
}

// estimate fans the rollouts out across an errgroup and averages the
// per-worker win rates. Worker seeds are drawn from the bot's own rng
// before any worker starts, so a fixed tournament seed still fixes
// the estimate.
func (e *Equity) estimate(hole, community []deck.Card, opponents int) float64 {
	pool := unseen(hole, community)
	perWorker := equityTrials / equityWorkers

	rates := make([]float64, equityWorkers)
	var g errgroup.Group
	for w := 0; w < equityWorkers; w++ {
		seed := int64(e.rng.Uint64())
		g.Go(func() error {
			rates[w] = winRate(randutil.New(seed), pool, hole, community, opponents, perWorker)
			return nil
		})
	}
	_ = g.Wait()

	var sum float64
	for _, rate := range rates {
		sum += rate
	}
	return sum / equityWorkers
}

// winRate plays trials random runouts and returns the share won, a
// tie with the best opponent counting half.
func winRate(rng *rand.Rand, pool, hole, community []deck.Card, opponents, trials int) float64 {
	need := 2*opponents + 5 - len(community)
	if need > len(pool) {
		return 0
	}

	cards := make([]deck.Card, len(pool))
	board := make([]deck.Card, 0, 5)
	mine := make([]deck.Card, 0, 7)
	theirs := make([]deck.Card, 0, 7)

	var score float64
	for t := 0; t < trials; t++ {
		copy(cards, pool)
		// Partial Fisher-Yates: only the cards this runout consumes.
		for i := 0; i < need; i++ {
			j := i + rng.IntN(len(cards)-i)
			cards[i], cards[j] = cards[j], cards[i]
		}

		board = append(board[:0], community...)
		board = append(board, cards[2*opponents:need]...)

		mine = append(mine[:0], hole...)
		mine = append(mine, board...)
		myValue := evaluator.Evaluate(mine)

		win := 1.0
		for opp := 0; opp < opponents; opp++ {
			theirs = append(theirs[:0], cards[2*opp:2*opp+2]...)
			theirs = append(theirs, board...)
			switch myValue.Compare(evaluator.Evaluate(theirs)) {
			case -1:
				win = 0
			case 0:
				if win == 1 {
					win = 0.5
				}
			}
			if win == 0 {
				break
			}
		}
		score += win
	}
	return score / float64(trials)
}

// unseen returns the standard deck minus the cards already visible.
func unseen(hole, community []deck.Card) []deck.Card {
	seen := make(map[deck.Card]bool, len(hole)+len(community))
	for _, c := range hole {
		seen[c] = true
	}
	for _, c := range community {
		seen[c] = true
	}
	pool := make([]deck.Card, 0, 52)
	for suit := deck.Hearts; suit <= deck.Spades; suit++ {
		for rank := deck.Two; rank <= deck.Ace; rank++ {
			if c := deck.NewCard(rank, suit); !seen[c] {
				pool = append(pool, c)
			}
		}
	}
	return pool
}

// clamp pins a target sizing inside the legal window.
func clamp(amount, lo, hi int) int {
	if amount < lo {
		return lo
	}
	if amount > hi {
		return hi
	}
	return amount
}
