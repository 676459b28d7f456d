package game

import (
	"context"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/botfelt/botfelt/internal/deck"
)

// move builds one scripted declaration.
func move(typ ActionType, amount int) Action {
	return Action{Type: typ, Amount: amount}
}

// script replays a fixed declaration sequence and fails the test if
// the engine polls past its end.
func script(t *testing.T, moves ...Action) Agent {
	t.Helper()
	i := 0
	return AgentFunc(func(_ *PublicState, _ []deck.Card) (ActionType, int) {
		if i >= len(moves) {
			t.Fatalf("Agent polled %d times with a %d-move script", i+1, len(moves))
		}
		m := moves[i]
		i++
		return m.Type, m.Amount
	})
}

// checkCaller plays the passive line forever: check when free, call
// when facing a bet.
func checkCaller(seat int) Agent {
	return AgentFunc(func(state *PublicState, _ []deck.Card) (ActionType, int) {
		if state.ToCall(seat) > 0 {
			return Call, 0
		}
		return Check, 0
	})
}

// stackDeck builds a deck factory dealing the given hole cards in
// seat order and then the board, with burn cards drawn from the
// unused remainder of the deck.
func stackDeck(t *testing.T, holes []string, board string) func(*rand.Rand) *deck.Deck {
	t.Helper()

	used := make(map[deck.Card]bool)
	var stacked []deck.Card
	for _, h := range holes {
		for _, c := range deck.MustParseCards(h) {
			used[c] = true
			stacked = append(stacked, c)
		}
	}
	boardCards := deck.MustParseCards(board)
	for _, c := range boardCards {
		used[c] = true
	}

	var spares []deck.Card
	for suit := deck.Hearts; suit <= deck.Spades; suit++ {
		for rank := deck.Two; rank <= deck.Ace; rank++ {
			if c := deck.NewCard(rank, suit); !used[c] {
				spares = append(spares, c)
			}
		}
	}

	for i, c := range boardCards {
		if i == 0 || i == 3 || i == 4 {
			stacked = append(stacked, spares[0])
			spares = spares[1:]
		}
		stacked = append(stacked, c)
	}
	return func(*rand.Rand) *deck.Deck { return deck.NewStacked(stacked...) }
}

func testTable(t *testing.T, agents []Agent, opts ...TableOption) *Table {
	t.Helper()
	table, err := NewTable(agents, opts...)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

// handFixture drives one Hand directly, which is how tests set up
// unequal stacks and scripted decks.
type handFixture struct {
	players      []PlayerInfo
	agents       []Agent
	button       int
	blinds       Blinds
	holes        []string
	board        string
	onCorrection func(Correction)
}

func runHand(t *testing.T, f handFixture) *HandResult {
	t.Helper()
	if f.blinds.Big == 0 {
		f.blinds = Blinds{Small: 10, Big: 20}
	}
	h := &Hand{
		logger:       log.New(io.Discard),
		players:      f.players,
		agents:       f.agents,
		button:       f.button,
		round:        1,
		blinds:       f.blinds,
		schedule:     BlindSchedule{1: f.blinds},
		deck:         stackDeck(t, f.holes, f.board)(nil),
		onCorrection: f.onCorrection,
	}
	result, err := h.run(context.Background())
	if err != nil {
		t.Fatalf("Hand failed: %v", err)
	}
	return result
}
