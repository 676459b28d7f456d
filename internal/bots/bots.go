// Package bots holds the built-in strategies a tournament can seat by
// name. They are reference opponents: predictable enough to test
// against, varied enough between them to exercise every corner of the
// betting rules.
package bots

import (
	"fmt"
	rand "math/rand/v2"
	"sort"
	"strings"

	"github.com/botfelt/botfelt/internal/game"
)

// Factory builds a strategy for one seat. The rng is the seat's own
// stream, derived from the tournament seed, so one bot's sampling
// never perturbs another's.
type Factory func(seat int, rng *rand.Rand) game.Agent

var registry = map[string]Factory{
	"folder":         func(seat int, _ *rand.Rand) game.Agent { return NewFolder(seat) },
	"callingstation": func(seat int, _ *rand.Rand) game.Agent { return NewCallingStation(seat) },
	"minraiser":      func(seat int, _ *rand.Rand) game.Agent { return NewMinRaiser(seat) },
	"random":         func(seat int, rng *rand.Rand) game.Agent { return NewRandom(seat, rng) },
	"allin":          func(seat int, _ *rand.Rand) game.Agent { return NewAllIn(seat) },
	"chart":          func(seat int, _ *rand.Rand) game.Agent { return NewChart(seat) },
	"equity":         func(seat int, rng *rand.Rand) game.Agent { return NewEquity(seat, rng) },
}

// New builds the named strategy.
func New(name string, seat int, rng *rand.Rand) (game.Agent, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (built-in: %s)", name, strings.Join(Names(), ", "))
	}
	return factory(seat, rng), nil
}

// Known reports whether name is a built-in strategy.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Names lists the built-in strategies in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
