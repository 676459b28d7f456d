package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/botfelt/botfelt/internal/bots"
	"github.com/botfelt/botfelt/internal/botwire"
	"github.com/botfelt/botfelt/internal/game"
	"github.com/botfelt/botfelt/internal/randutil"
)

// BotCmd serves a built-in strategy over the wire protocol on
// stdin/stdout. Restricted tournaments spawn it for every built-in
// seat, so house strategies face the same sandbox as external bots.
type BotCmd struct {
	Strategy string `arg:"" help:"Built-in strategy to serve (see 'botfelt bots')."`
}

func (c *BotCmd) Run(logger *log.Logger) error {
	if !bots.Known(c.Strategy) {
		return fmt.Errorf("unknown strategy %q (built-in: %s)", c.Strategy, strings.Join(bots.Names(), ", "))
	}
	return serveWire(os.Stdin, os.Stdout, c.Strategy, logger.WithPrefix(c.Strategy))
}

// serveWire answers engine frames until shutdown or EOF.
func serveWire(r io.Reader, w io.Writer, strategy string, logger *log.Logger) error {
	reader := botwire.NewReader(r)
	var agent game.Agent
	for {
		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			// The engine went away; nothing left to serve.
			return nil
		}
		if err != nil {
			return err
		}

		switch frame.Type {
		case botwire.FrameHello:
			var hello botwire.Hello
			if err := frame.Payload(&hello); err != nil {
				return err
			}
			if hello.Version != botwire.Version {
				return fmt.Errorf("engine speaks protocol %d, this bot speaks %d", hello.Version, botwire.Version)
			}
			agent, err = bots.New(strategy, hello.Seat, randutil.New(hello.Seed))
			if err != nil {
				return err
			}
			logger.Debug("Seated", "seat", hello.Seat, "players", hello.Players, "stack", hello.StartingStack)
			if err := botwire.Encode(w, botwire.FrameReady, botwire.Ready{Version: botwire.Version, Name: strategy}); err != nil {
				return err
			}

		case botwire.FrameDecide:
			if agent == nil {
				return errors.New("decide before hello")
			}
			var decide botwire.Decide
			if err := frame.Payload(&decide); err != nil {
				return err
			}
			action, amount := agent.Decide(decide.State, decide.Hole)
			if err := botwire.Encode(w, botwire.FrameAction, botwire.ActionReply{Action: action, Amount: amount}); err != nil {
				return err
			}

		case botwire.FrameResult:
			// Built-ins carry no state between hands.

		case botwire.FrameShutdown:
			return nil
		}
	}
}
