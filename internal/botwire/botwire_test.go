package botwire

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/botfelt/botfelt/internal/deck"
	"github.com/botfelt/botfelt/internal/game"
)

func TestHandshakeRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	hello := Hello{
		Version:       Version,
		Seat:          2,
		Name:          "crusher",
		Players:       6,
		StartingStack: 1000,
		Seed:          42,
	}
	if err := Encode(&buf, FrameHello, hello); err != nil {
		t.Fatalf("Expected encode to succeed, got %v", err)
	}

	frame, err := NewReader(&buf).Next()
	if err != nil {
		t.Fatalf("Expected a frame, got %v", err)
	}
	if frame.Type != FrameHello {
		t.Errorf("Expected hello frame, got %s", frame.Type)
	}

	var decoded Hello
	if err := frame.Payload(&decoded); err != nil {
		t.Fatalf("Expected payload to decode, got %v", err)
	}
	if decoded != hello {
		t.Errorf("Expected %+v, got %+v", hello, decoded)
	}
}

func TestDecideFrameCarriesState(t *testing.T) {
	t.Parallel()

	state := &game.PublicState{
		Round:  3,
		Button: 1,
		Players: []game.PlayerInfo{
			{Stack: 980, CurrentBet: 20, Active: true},
			{Stack: 990, CurrentBet: 10, Active: true},
		},
		Community:    []deck.Card{{Rank: deck.Ace, Suit: deck.Spades}, {Rank: deck.King, Suit: deck.Hearts}, {Rank: deck.Two, Suit: deck.Clubs}},
		TotalPot:     60,
		Blinds:       game.Blinds{Small: 10, Big: 20},
		MinimumRaise: 20,
	}
	hole := []deck.Card{{Rank: deck.Queen, Suit: deck.Diamonds}, {Rank: deck.Queen, Suit: deck.Clubs}}

	var buf bytes.Buffer
	if err := Encode(&buf, FrameDecide, Decide{State: state, Hole: hole}); err != nil {
		t.Fatalf("Expected encode to succeed, got %v", err)
	}

	line := buf.String()
	for _, want := range []string{`"As"`, `"Qd"`, `"total_pot":60`} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected frame to contain %s, got %s", want, line)
		}
	}

	frame, err := NewReader(&buf).Next()
	if err != nil {
		t.Fatalf("Expected a frame, got %v", err)
	}
	var decoded Decide
	if err := frame.Payload(&decoded); err != nil {
		t.Fatalf("Expected payload to decode, got %v", err)
	}
	if decoded.State.TotalPot != 60 {
		t.Errorf("Expected pot 60, got %d", decoded.State.TotalPot)
	}
	if len(decoded.Hole) != 2 || decoded.Hole[0].String() != "Qd" {
		t.Errorf("Expected hole cards to survive the trip, got %v", decoded.Hole)
	}
	if decoded.State.CurrentStreet() != game.Flop {
		t.Errorf("Expected flop, got %s", decoded.State.CurrentStreet())
	}
}

func TestActionReplyWireNames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Encode(&buf, FrameAction, ActionReply{Action: game.AllIn, Amount: 500}); err != nil {
		t.Fatalf("Expected encode to succeed, got %v", err)
	}
	if !strings.Contains(buf.String(), `"action":"all-in"`) {
		t.Errorf("Expected wire name all-in, got %s", buf.String())
	}

	frame, err := NewReader(&buf).Next()
	if err != nil {
		t.Fatalf("Expected a frame, got %v", err)
	}
	var reply ActionReply
	if err := frame.Payload(&reply); err != nil {
		t.Fatalf("Expected payload to decode, got %v", err)
	}
	if reply.Action != game.AllIn || reply.Amount != 500 {
		t.Errorf("Expected all-in 500, got %s %d", reply.Action, reply.Amount)
	}
}

func TestUnknownActionDecodesToNone(t *testing.T) {
	t.Parallel()

	input := `{"type":"action","data":{"action":"jam","amount":50}}` + "\n"
	frame, err := NewReader(strings.NewReader(input)).Next()
	if err != nil {
		t.Fatalf("Expected a frame, got %v", err)
	}
	var reply ActionReply
	if err := frame.Payload(&reply); err != nil {
		t.Fatalf("Expected payload to decode, got %v", err)
	}
	if reply.Action != game.None {
		t.Errorf("Expected unknown action to decode to none, got %s", reply.Action)
	}
}

func TestShutdownHasNoPayload(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Encode(&buf, FrameShutdown, nil); err != nil {
		t.Fatalf("Expected encode to succeed, got %v", err)
	}
	if strings.Contains(buf.String(), "data") {
		t.Errorf("Expected bare envelope, got %s", buf.String())
	}

	frame, err := NewReader(&buf).Next()
	if err != nil {
		t.Fatalf("Expected a frame, got %v", err)
	}
	var dst struct{}
	if err := frame.Payload(&dst); err == nil {
		t.Error("Expected payload error for empty data")
	}
}

func TestReaderSkipsBlankLines(t *testing.T) {
	t.Parallel()

	input := "\n\n" + `{"type":"ready","data":{"version":1}}` + "\n\n"
	reader := NewReader(strings.NewReader(input))

	frame, err := reader.Next()
	if err != nil {
		t.Fatalf("Expected a frame, got %v", err)
	}
	if frame.Type != FrameReady {
		t.Errorf("Expected ready frame, got %s", frame.Type)
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("Expected EOF after the last frame, got %v", err)
	}
}

func TestReaderRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := NewReader(strings.NewReader("not a frame\n")).Next()
	if err == nil || errors.Is(err, io.EOF) {
		t.Errorf("Expected a decode error, got %v", err)
	}
}

func TestReaderStopsAtOversizedFrame(t *testing.T) {
	t.Parallel()

	line := `{"type":"action","data":{"action":"fold","pad":"` +
		strings.Repeat("x", MaxFrameSize) + `"}}` + "\n"
	_, err := NewReader(strings.NewReader(line)).Next()
	if err == nil || errors.Is(err, io.EOF) {
		t.Errorf("Expected an oversize error, got %v", err)
	}
}
