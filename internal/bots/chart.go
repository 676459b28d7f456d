package bots

import (
	"github.com/botfelt/botfelt/internal/deck"
	"github.com/botfelt/botfelt/internal/game"
)

// Percentile gates for the chart: the top 15% of starting hands open,
// the top half defends, the rest gets away cheap.
const (
	chartOpen = 0.85
	chartCall = 0.50
)

// Chart plays a fixed starting-hand chart preflop and goes passive
// after the flop, checking when free and calling everything else. No
// reads, no randomness: the same cards always play the same way.
type Chart struct {
	seat int
}

// NewChart creates a Chart for the given seat.
func NewChart(seat int) *Chart {
	return &Chart{seat: seat}
}

// Decide implements game.Agent.
func (c *Chart) Decide(state *game.PublicState, hole []deck.Card) (game.ActionType, int) {
	legal := state.Legal(c.seat)
	toCall := state.ToCall(c.seat)

	if state.CurrentStreet() == game.Preflop {
		switch percentile := deck.StartingHandPercentile(hole); {
		case percentile >= chartOpen && legal.Raise:
			return game.Raise, clamp(3*state.Blinds.Big, legal.MinRaise, legal.MaxRaise)
		case percentile >= chartCall:
			if toCall > 0 {
				return game.Call, toCall
			}
			return game.Check, 0
		default:
			if toCall > 0 {
				return game.Fold, 0
			}
			return game.Check, 0
		}
	}

	if toCall > 0 {
		return game.Call, toCall
	}
	return game.Check, 0
}
