// Package bot is the contract between a tournament and the Go bots
// that play in it. A bot implements Act; Run speaks the engine's
// line-delimited JSON protocol on stdin and stdout so the same code
// works as a sandboxed subprocess. Write diagnostics to stderr only:
// stdout belongs to the protocol.
package bot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Version is the protocol version this package speaks.
const Version = 1

// maxFrame matches the engine's frame ceiling.
const maxFrame = 4 << 20

// Bot decides one action at a time. Act receives the public state and
// the bot's own hole cards and returns the action with its amount:
// additional chips for Raise, the absolute street total for Bet,
// anything for the rest. Illegal returns are corrected by the engine,
// never rejected, so a buggy bot plays on.
//
// A Bot that also implements io.Closer is closed when the engine shuts
// the session down.
type Bot interface {
	Act(state *State, hole []Card) (Action, int)
}

// HandObserver is implemented by bots that want finished hands as
// they complete, for opponent modeling between decisions.
type HandObserver interface {
	ObserveHand(hand *HandResult)
}

// Session describes the tournament seat handed to a Factory.
type Session struct {
	Seat          int   `json:"seat"`
	Players       int   `json:"players"`
	StartingStack int   `json:"starting_stack"`
	Seed          int64 `json:"seed"`

	// Name is the label the tournament runs this bot under.
	Name string `json:"name"`
}

// Factory builds the bot once the engine assigns its seat. Seed is
// drawn from the tournament master seed, so a bot that derives all of
// its randomness from it keeps tournaments reproducible.
type Factory func(session Session) Bot

// Run serves a bot on stdin/stdout until the engine closes the
// session. It returns nil on an orderly shutdown or when the engine
// goes away, and an error only for protocol violations.
func Run(factory Factory) error {
	return run(factory, os.Stdin, os.Stdout)
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type helloData struct {
	Version int `json:"version"`
	Session
}

type decideData struct {
	State *State `json:"state"`
	Hole  []Card `json:"hole_cards"`
}

type actionData struct {
	Action Action `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

type resultData struct {
	Hand *HandResult `json:"hand"`
}

func run(factory Factory, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrame)

	var b Bot
	defer func() {
		if closer, ok := b.(io.Closer); ok {
			closer.Close()
		}
	}()

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var f frame
		if err := json.Unmarshal(line, &f); err != nil {
			return fmt.Errorf("decoding frame: %w", err)
		}

		switch f.Type {
		case "hello":
			var hello helloData
			if err := json.Unmarshal(f.Data, &hello); err != nil {
				return fmt.Errorf("decoding hello: %w", err)
			}
			if hello.Version != Version {
				return fmt.Errorf("engine speaks protocol %d, this bot speaks %d", hello.Version, Version)
			}
			b = factory(hello.Session)
			reply := struct {
				Version int    `json:"version"`
				Name    string `json:"name,omitempty"`
			}{Version: Version, Name: hello.Name}
			if err := send(out, "ready", reply); err != nil {
				return err
			}

		case "decide":
			if b == nil {
				return fmt.Errorf("decide before hello")
			}
			var decide decideData
			if err := json.Unmarshal(f.Data, &decide); err != nil {
				return fmt.Errorf("decoding decide: %w", err)
			}
			action, amount := b.Act(decide.State, decide.Hole)
			if err := send(out, "action", actionData{Action: action, Amount: amount}); err != nil {
				return err
			}

		case "result":
			observer, ok := b.(HandObserver)
			if !ok {
				continue
			}
			var result resultData
			if err := json.Unmarshal(f.Data, &result); err != nil {
				return fmt.Errorf("decoding result: %w", err)
			}
			observer.ObserveHand(result.Hand)

		case "shutdown":
			return nil

		default:
			// Unknown frames are skipped so older bots survive
			// protocol additions.
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading engine: %w", err)
	}
	return nil
}

func send(out io.Writer, typ string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", typ, err)
	}
	line, err := json.Marshal(frame{Type: typ, Data: data})
	if err != nil {
		return fmt.Errorf("encoding %s frame: %w", typ, err)
	}
	line = append(line, '\n')
	if _, err := out.Write(line); err != nil {
		return fmt.Errorf("writing %s frame: %w", typ, err)
	}
	return nil
}
