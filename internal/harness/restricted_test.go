package harness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/botfelt/botfelt/internal/game"
)

// Script bots speaking the wire protocol from plain sh keep these
// tests free of compiled fixtures.
const (
	replyingBot = `read line
printf '{"type":"ready","data":{"version":1}}\n'
while read line; do
  case "$line" in
    *'"type":"shutdown"'*) exit 0 ;;
    *'"type":"result"'*) ;;
    *) printf '{"type":"action","data":{"action":"call"}}\n' ;;
  esac
done
`

	silentBot = `read line
printf '{"type":"ready","data":{"version":1}}\n'
while read line; do :; done
`

	noReadyBot = `while read line; do :; done
`

	wrongVersionBot = `read line
printf '{"type":"ready","data":{"version":99}}\n'
while read line; do :; done
`

	crashingBot = `read line
printf '{"type":"ready","data":{"version":1}}\n'
read line
exit 7
`

	garbageBot = `read line
printf '{"type":"ready","data":{"version":1}}\n'
read line
printf 'not a frame\n'
while read line; do :; done
`

	crashOnceBot = `read line
printf '{"type":"ready","data":{"version":1}}\n'
if [ ! -f "$MARKER" ]; then
  : > "$MARKER"
  read line
  exit 7
fi
while read line; do
  case "$line" in
    *'"type":"shutdown"'*) exit 0 ;;
    *) printf '{"type":"action","data":{"action":"raise","amount":40}}\n' ;;
  esac
done
`

	slowBot = `read line
printf '{"type":"ready","data":{"version":1}}\n'
while read line; do
  sleep 1
  printf '{"type":"action","data":{"action":"call"}}\n'
done
`
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("Failed to write bot script: %v", err)
	}
	return path
}

func scriptHarness(t *testing.T, body string, opts ...RestrictedOption) (*Restricted, *[]Event) {
	t.Helper()
	events := &[]Event{}
	opts = append(opts, WithEventSink(func(e Event) { *events = append(*events, e) }))
	h := NewRestricted("/bin/sh", []string{writeScript(t, body)},
		Session{Seat: 0, Name: "scripted", Players: 2, StartingStack: 1000, Seed: 7}, opts...)
	t.Cleanup(func() { h.Close() })
	return h, events
}

func TestRestrictedSession(t *testing.T) {
	h, events := scriptHarness(t, replyingBot)
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start bot: %v", err)
	}

	action, amount := h.Decide(decideState(), nil)
	if action != game.Call || amount != 0 {
		t.Errorf("Expected call, got %s %d", action, amount)
	}

	h.NotifyHand(&game.HandResult{Round: 1, Pot: 40})

	// The same process answers the next decision.
	action, _ = h.Decide(decideState(), nil)
	if action != game.Call {
		t.Errorf("Expected call on the second decision, got %s", action)
	}
	if len(*events) != 0 {
		t.Errorf("Expected no incidents, got %+v", *events)
	}
	if err := h.Close(); err != nil {
		t.Errorf("Expected a clean shutdown, got %v", err)
	}
}

func TestRestrictedStartFailures(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"wrong version", wrongVersionBot, "protocol 99"},
		{"no ready", noReadyBot, "no ready"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h, _ := scriptHarness(t, c.body, WithTimeLimit(200*time.Millisecond))
			err := h.Start(context.Background())
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Errorf("Expected an error containing %q, got %v", c.want, err)
			}
		})
	}

	t.Run("exits immediately", func(t *testing.T) {
		// Depending on how fast the child dies, the failure surfaces
		// either on the hello write or as an exit during handshake.
		h, _ := scriptHarness(t, "exit 3\n", WithTimeLimit(200*time.Millisecond))
		if err := h.Start(context.Background()); err == nil {
			t.Error("Expected a handshake error from a bot that exits at once")
		}
	})

	missing := NewRestricted("/nonexistent-bot-binary", nil, Session{Name: "ghost"})
	if err := missing.Start(context.Background()); err == nil {
		t.Error("Expected a spawn error for a missing binary")
	}
}

func TestRestrictedTimeout(t *testing.T) {
	h, events := scriptHarness(t, silentBot, WithTimeLimit(100*time.Millisecond))
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start bot: %v", err)
	}

	action, amount := h.Decide(decideState(), nil)
	if action != game.None || amount != 0 {
		t.Errorf("Expected the decision forfeited as none, got %s %d", action, amount)
	}
	if len(*events) != 1 || (*events)[0].Kind != EventTimeout {
		t.Fatalf("Expected a timeout event, got %+v", *events)
	}
	if (*events)[0].Round != 1 || (*events)[0].Street != "preflop" {
		t.Errorf("Expected the event to carry round and street, got %+v", (*events)[0])
	}
	if h.proc != nil {
		t.Error("Expected the child to be retired after the timeout")
	}
}

func TestRestrictedCrashAndRestart(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "crashed-once")
	h, events := scriptHarness(t, crashOnceBot, WithEnv([]string{"MARKER=" + marker}))
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start bot: %v", err)
	}

	action, _ := h.Decide(decideState(), nil)
	if action != game.None {
		t.Errorf("Expected the crashed decision forfeited as none, got %s", action)
	}

	action, amount := h.Decide(decideState(), nil)
	if action != game.Raise || amount != 40 {
		t.Errorf("Expected raise 40 from the restarted bot, got %s %d", action, amount)
	}

	if len(*events) != 2 {
		t.Fatalf("Expected crash then restart, got %+v", *events)
	}
	if (*events)[0].Kind != EventCrash || !strings.Contains((*events)[0].Detail, "exit status 7") {
		t.Errorf("Expected a crash event with the exit status, got %+v", (*events)[0])
	}
	if (*events)[1].Kind != EventRestart {
		t.Errorf("Expected a restart event, got %+v", (*events)[1])
	}
}

func TestRestrictedProtocolBreach(t *testing.T) {
	h, events := scriptHarness(t, garbageBot)
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start bot: %v", err)
	}

	action, _ := h.Decide(decideState(), nil)
	if action != game.None {
		t.Errorf("Expected the decision forfeited as none, got %s", action)
	}
	if len(*events) != 1 || (*events)[0].Kind != EventProtocol {
		t.Errorf("Expected a protocol event, got %+v", *events)
	}
}

func TestRestrictedMemoryCeiling(t *testing.T) {
	h, events := scriptHarness(t, slowBot,
		WithTimeLimit(5*time.Second), WithMemoryLimit(500<<20))
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start bot: %v", err)
	}

	// First probe passes the pre-check, the poll then sees the bot
	// over the ceiling while it pretends to think.
	probes := 0
	h.memProbe = func(pid int32) (uint64, error) {
		probes++
		if probes == 1 {
			return 10 << 20, nil
		}
		return 600 << 20, nil
	}

	start := time.Now()
	action, _ := h.Decide(decideState(), nil)
	if action != game.None {
		t.Errorf("Expected the decision forfeited as none, got %s", action)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected the poll to catch the violation early, took %s", elapsed)
	}
	if len(*events) != 1 || (*events)[0].Kind != EventMemory {
		t.Fatalf("Expected a memory event, got %+v", *events)
	}
	if !strings.Contains((*events)[0].Detail, "ceiling") {
		t.Errorf("Expected the detail to name the ceiling, got %q", (*events)[0].Detail)
	}
}

func TestRestrictedMemoryPreCheck(t *testing.T) {
	h, events := scriptHarness(t, replyingBot, WithMemoryLimit(100<<20))
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start bot: %v", err)
	}
	h.memProbe = func(pid int32) (uint64, error) { return 200 << 20, nil }

	action, _ := h.Decide(decideState(), nil)
	if action != game.None {
		t.Errorf("Expected the decision forfeited as none, got %s", action)
	}
	if len(*events) != 1 || (*events)[0].Kind != EventMemory {
		t.Errorf("Expected the pre-check to trip, got %+v", *events)
	}
}
