package main

import (
	"fmt"

	"github.com/botfelt/botfelt/internal/bots"
)

// BotsCmd lists the built-in strategies a config file or --bot flag
// can name.
type BotsCmd struct{}

var strategyBlurbs = map[string]string{
	"allin":          "shoves every decision",
	"callingstation": "calls any bet, never bets itself",
	"chart":          "starting-hand chart preflop, passive after the flop",
	"equity":         "Monte Carlo hand strength, prices calls against pot odds",
	"folder":         "checks when free, folds to any bet",
	"minraiser":      "opens and raises the minimum every time",
	"random":         "uniform pick among legal actions, uniform sizing",
}

func (BotsCmd) Run() error {
	for _, name := range bots.Names() {
		fmt.Printf("%s  %s\n", nameStyle.Render(fmt.Sprintf("%-16s", name)), strategyBlurbs[name])
	}
	return nil
}
