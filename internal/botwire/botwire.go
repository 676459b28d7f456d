// Package botwire defines the newline-delimited JSON frames exchanged
// between the harness and a bot subprocess over its standard pipes.
// The harness writes frames to the bot's stdin and reads replies from
// its stdout; stderr stays free for the bot's own diagnostics.
package botwire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/botfelt/botfelt/internal/deck"
	"github.com/botfelt/botfelt/internal/game"
)

// Version is the protocol version carried in the handshake. The
// harness rejects bots that answer ready with any other version.
const Version = 1

// MaxFrameSize caps a single frame line. A full tournament state with
// deep hand histories stays well under this; anything larger is a bot
// flooding its stdout.
const MaxFrameSize = 4 << 20

// FrameType tags a frame envelope.
type FrameType string

// Harness to bot frame types.
const (
	FrameHello    FrameType = "hello"
	FrameDecide   FrameType = "decide"
	FrameResult   FrameType = "result"
	FrameShutdown FrameType = "shutdown"
)

// Bot to harness frame types.
const (
	FrameReady  FrameType = "ready"
	FrameAction FrameType = "action"
)

// Frame is the envelope every message travels in. Data holds the
// payload for the frame type; shutdown carries none.
type Frame struct {
	Type FrameType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Hello opens a session. It tells the bot where it sits and how the
// tournament is configured, and the bot must answer with a ready
// frame before any cards move.
type Hello struct {
	Version       int    `json:"version"`
	Seat          int    `json:"seat"`
	Name          string `json:"name"`
	Players       int    `json:"players"`
	StartingStack int    `json:"starting_stack"`
	Seed          int64  `json:"seed"`
}

// Ready is the bot's handshake reply.
type Ready struct {
	Version int    `json:"version"`
	Name    string `json:"name,omitempty"`
}

// Decide asks the bot for its next action. State is the same public
// snapshot in-process agents receive; Hole is the bot's two cards.
type Decide struct {
	State *game.PublicState `json:"state"`
	Hole  []deck.Card       `json:"hole_cards"`
}

// ActionReply is the bot's answer to a decide frame. Action uses wire
// names (fold, check, call, bet, raise, all-in); an unknown name
// decodes to none and the validator turns it into a check or fold. The
// amount conventions match game.Action.
type ActionReply struct {
	Action game.ActionType `json:"action"`
	Amount int             `json:"amount,omitempty"`
}

// Result notifies the bot of a finished hand. Bots do not reply.
type Result struct {
	Hand *game.HandResult `json:"hand"`
}

// Encode writes one frame with the given payload as a single line.
func Encode(w io.Writer, typ FrameType, payload any) error {
	frame := Frame{Type: typ}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s payload: %w", typ, err)
		}
		frame.Data = data
	}
	line, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encoding %s frame: %w", typ, err)
	}
	line = append(line, '\n')
	if _, err := w.Write(line); err != nil {
		return fmt.Errorf("writing %s frame: %w", typ, err)
	}
	return nil
}

// Payload decodes the frame's data into dst.
func (f *Frame) Payload(dst any) error {
	if len(f.Data) == 0 {
		return fmt.Errorf("%s frame carries no payload", f.Type)
	}
	if err := json.Unmarshal(f.Data, dst); err != nil {
		return fmt.Errorf("decoding %s payload: %w", f.Type, err)
	}
	return nil
}

// Reader decodes frames from a stream, one line at a time. Blank
// lines are skipped so bots may flush freely.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r with a line scanner sized for the largest legal
// frame.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxFrameSize)
	return &Reader{scanner: scanner}
}

// Next returns the next frame, or io.EOF once the stream ends. A line
// that is not a frame envelope is an error; the harness treats that as
// a misbehaving bot, not a recoverable glitch.
func (r *Reader) Next() (*Frame, error) {
	for r.scanner.Scan() {
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var frame Frame
		if err := json.Unmarshal(line, &frame); err != nil {
			return nil, fmt.Errorf("decoding frame: %w", err)
		}
		return &frame, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading frame: %w", err)
	}
	return nil, io.EOF
}
