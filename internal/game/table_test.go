package game

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/botfelt/botfelt/internal/deck"
)

func TestNewTableValidation(t *testing.T) {
	t.Parallel()

	two := []Agent{checkCaller(0), checkCaller(1)}

	tests := []struct {
		name   string
		agents []Agent
		opts   []TableOption
	}{
		{"one seat", []Agent{checkCaller(0)}, nil},
		{"nil agent", []Agent{checkCaller(0), nil}, nil},
		{"too many seats", make([]Agent, 23), nil},
		{"zero stack", two, []TableOption{WithStartingStack(0)}},
		{"empty schedule", two, []TableOption{WithBlindsSchedule(BlindSchedule{})}},
		{"no round one level", two, []TableOption{WithBlindsSchedule(BlindSchedule{2: {Small: 10, Big: 20}})}},
		{"zero small blind", two, []TableOption{WithBlindsSchedule(BlindSchedule{1: {Small: 0, Big: 20}})}},
		{"big below small", two, []TableOption{WithBlindsSchedule(BlindSchedule{1: {Small: 30, Big: 20}})}},
		{"button out of range", two, []TableOption{WithButton(5)}},
		{"duplicate names", two, []TableOption{WithNames([]string{"a", "a"})}},
		{"name count mismatch", two, []TableOption{WithNames([]string{"a"})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "too many seats" {
				for i := range tt.agents {
					tt.agents[i] = checkCaller(i)
				}
			}
			_, err := NewTable(tt.agents, tt.opts...)
			var confErr *ConfigurationError
			if !errors.As(err, &confErr) {
				t.Errorf("Expected a ConfigurationError, got %v", err)
			}
		})
	}
}

func TestNewTableDefaults(t *testing.T) {
	t.Parallel()

	table := testTable(t, []Agent{checkCaller(0), checkCaller(1)}, WithSeed(7))
	if table.Round() != 1 {
		t.Errorf("Expected round 1, got %d", table.Round())
	}
	names := table.Names()
	if names[0] != "player0" || names[1] != "player1" {
		t.Errorf("Expected generated names, got %v", names)
	}
	for _, p := range table.Players() {
		if p.Stack != 1000 || p.Busted {
			t.Errorf("Unexpected seat state %+v", p)
		}
	}
	if table.Seed() != 7 {
		t.Errorf("Expected seed 7, got %d", table.Seed())
	}
}

// The button moves to the next live seat each hand and the blinds
// follow the schedule by round number.
func TestTableButtonAndBlindsAdvance(t *testing.T) {
	t.Parallel()

	agents := []Agent{checkCaller(0), checkCaller(1), checkCaller(2)}
	table := testTable(t, agents,
		WithSeed(11),
		WithBlindsSchedule(BlindSchedule{
			1: {Small: 10, Big: 20},
			3: {Small: 25, Big: 50},
		}),
	)

	for round := 1; round <= 3; round++ {
		result, err := table.PlayHand(context.Background())
		if err != nil {
			t.Fatalf("Hand %d failed: %v", round, err)
		}
		if result.Round != round {
			t.Errorf("Expected round %d, got %d", round, result.Round)
		}
		if result.Button != round-1 {
			t.Errorf("Expected button on seat %d in round %d, got %d",
				round-1, round, result.Button)
		}

		posts := result.Record.Streets[Preflop].Actions
		wantSmall := 10
		if round >= 3 {
			wantSmall = 25
		}
		if posts[0].Type != SmallBlind || posts[0].Amount != wantSmall {
			t.Errorf("Round %d: expected small blind %d, got %+v", round, wantSmall, posts[0])
		}
	}
	if table.Round() != 4 {
		t.Errorf("Expected round 4 after three hands, got %d", table.Round())
	}
}

// Finished hands become visible to agents as previous-hand records,
// showdown reveals included; the hand in progress never shows its
// showdown.
func TestTablePreviousHandsVisible(t *testing.T) {
	t.Parallel()

	polls := 0
	var sawPrevious *HandRecord
	witness := AgentFunc(func(state *PublicState, _ []deck.Card) (ActionType, int) {
		polls++
		if state.Round == 2 && sawPrevious == nil && len(state.PreviousHands) == 1 {
			sawPrevious = state.PreviousHands[0]
		}
		if state.ToCall(1) > 0 {
			return Call, 0
		}
		return Check, 0
	})

	table := testTable(t, []Agent{checkCaller(0), witness},
		WithSeed(3),
		WithDeckFactory(stackDeck(t, []string{"Ah Kh", "2c 3c"}, "Ks Qd 8c 4s 9h")),
	)

	for hand := 0; hand < 2; hand++ {
		if _, err := table.PlayHand(context.Background()); err != nil {
			t.Fatalf("Hand %d failed: %v", hand+1, err)
		}
	}

	if sawPrevious == nil {
		t.Fatalf("Agent never saw the previous hand (%d polls)", polls)
	}
	if sawPrevious.Round != 1 {
		t.Errorf("Expected the record of round 1, got %d", sawPrevious.Round)
	}
	if sawPrevious.Showdown == nil {
		t.Fatalf("Previous hand is missing its showdown reveals")
	}
	holes := sawPrevious.Showdown.HoleCards
	if len(holes) != 2 {
		t.Errorf("Expected both hole hands revealed, got %v", holes)
	}
	if got := deck.Strings(holes[0]); len(got) != 2 || got[0] != "Ah" || got[1] != "Kh" {
		t.Errorf("Expected seat 0 to have revealed Ah Kh, got %v", got)
	}
}

// Busting down to one live seat ends the table: another hand is an
// error, not a deal.
func TestTableHeadsUpBustOut(t *testing.T) {
	t.Parallel()

	players := []Agent{
		script(t, move(AllIn, 0)),
		script(t, move(Call, 0)),
	}
	table := testTable(t, players,
		WithSeed(5),
		WithDeckFactory(stackDeck(t, []string{"Ah Ad", "2c 3c"}, "Ks Qd 8c 4s 9h")),
	)

	result, err := table.PlayHand(context.Background())
	if err != nil {
		t.Fatalf("Hand failed: %v", err)
	}
	if len(result.Eliminated) != 1 || result.Eliminated[0] != 1 {
		t.Errorf("Expected seat 1 eliminated, got %v", result.Eliminated)
	}
	if table.Remaining() != 1 {
		t.Errorf("Expected one live seat, got %d", table.Remaining())
	}
	if _, err := table.PlayHand(context.Background()); err == nil {
		t.Errorf("Expected an error playing a hand with one live seat")
	}
}

type closerAgent struct {
	Agent
	closed bool
	fail   bool
}

func (c *closerAgent) Close() error {
	c.closed = true
	if c.fail {
		return fmt.Errorf("close failed")
	}
	return nil
}

func TestTableCloseClosesAgents(t *testing.T) {
	t.Parallel()

	a := &closerAgent{Agent: checkCaller(0)}
	b := &closerAgent{Agent: checkCaller(1), fail: true}
	table := testTable(t, []Agent{a, b, checkCaller(2)})

	if err := table.Close(); err == nil {
		t.Errorf("Expected Close to surface the failing agent")
	}
	if !a.closed || !b.closed {
		t.Errorf("Expected all closer agents closed, got %v %v", a.closed, b.closed)
	}
}
