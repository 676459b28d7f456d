package game

import "github.com/botfelt/botfelt/internal/deck"

// Agent supplies betting decisions for one seat. Decide receives the
// public table state plus the seat's own hole cards and returns a
// declared action. Declarations are requests, not commands: Validate
// corrects anything illegal before it touches chips, so an Agent can
// be wrong, slow or hostile without breaking the hand.
//
// Agents that hold external resources (bot subprocesses, sockets) may
// additionally implement io.Closer; the Table closes them when the
// tournament ends.
type Agent interface {
	Decide(state *PublicState, hole []deck.Card) (ActionType, int)
}

// AgentFunc adapts a function to the Agent interface. Tests use it to
// script exact action sequences.
type AgentFunc func(state *PublicState, hole []deck.Card) (ActionType, int)

// Decide calls f.
func (f AgentFunc) Decide(state *PublicState, hole []deck.Card) (ActionType, int) {
	return f(state, hole)
}
