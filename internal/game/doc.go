// Package game implements the core No-Limit Hold'em tournament engine.
//
// The main types are Table, which owns the durable tournament state
// (stacks, button, blinds, hand histories), and Hand, the per-hand
// state machine that deals cards, runs the four betting streets,
// reconciles contributions into side pots and distributes them at
// showdown. A Tournament loops hands on a Table until one seat holds
// every chip.
//
// Decisions come from Agents. The engine never trusts them: every
// declared action passes through Validate, which corrects illegal
// actions to the nearest legal one and reports the correction instead
// of failing the hand. Agents that crash, stall or misbehave are the
// harness's problem; from the engine's point of view a seat always
// produces some action.
//
// # Determinism
//
// All shuffling flows from a single master RNG owned by the Table.
// Each hand draws a fresh seed from it, so a fixed tournament seed and
// identical agent decisions reproduce every deal, every pot and every
// history record byte for byte.
//
// # Basic Usage
//
//	table, err := game.NewTable(agents,
//	    game.WithSeed(42),
//	    game.WithStartingStack(1000),
//	    game.WithBlindsSchedule(game.BlindSchedule{1: {Small: 10, Big: 20}}),
//	)
//	// Run a single hand...
//	result, err := table.PlayHand(ctx)
//	// ...or a whole tournament.
//	tournament := game.NewTournament(table, game.WithMaxRounds(500))
//	outcome, err := tournament.Run(ctx)
package game
