package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrExhausted is returned when a deal or burn would consume more than
// the 52 cards a deck holds.
var ErrExhausted = errors.New("deck exhausted")

// Deck is a standard 52-card deck dealt front to back. Burned cards
// advance the deal pointer without being returned, so they can never
// reappear within the same hand.
type Deck struct {
	cards  [52]Card
	next   int
	burned int
	rng    *rand.Rand
}

// NewDeck creates a shuffled deck driven by the given RNG. The RNG is
// required so hands stay reproducible under a fixed seed.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("deck: rng is required")
	}

	d := &Deck{rng: rng}
	i := 0
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}

	d.Shuffle()
	return d
}

// NewStacked creates an unshuffled deck that deals the given cards in
// order, followed by the rest of the standard deck. It exists so tests
// can script exact hole cards and boards. Duplicates panic.
func NewStacked(cards ...Card) *Deck {
	if len(cards) > 52 {
		panic(fmt.Sprintf("deck: stacked with %d cards", len(cards)))
	}

	d := &Deck{}
	seen := make(map[Card]bool, len(cards))
	i := 0
	for _, c := range cards {
		if seen[c] {
			panic(fmt.Sprintf("deck: duplicate card %s", c))
		}
		seen[c] = true
		d.cards[i] = c
		i++
	}
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := NewCard(rank, suit)
			if !seen[c] {
				d.cards[i] = c
				i++
			}
		}
	}
	return d
}

// Shuffle rewinds the deck and shuffles it in place with Fisher-Yates.
func (d *Deck) Shuffle() {
	d.next = 0
	d.burned = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// DealOne deals the next card.
func (d *Deck) DealOne() (Card, error) {
	if d.next >= len(d.cards) {
		return Card{}, ErrExhausted
	}
	card := d.cards[d.next]
	d.next++
	return card, nil
}

// Deal deals n cards in order.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || d.next+n > len(d.cards) {
		return nil, ErrExhausted
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Burn discards the next card face down.
func (d *Deck) Burn() error {
	if d.next >= len(d.cards) {
		return ErrExhausted
	}
	d.next++
	d.burned++
	return nil
}

// Remaining returns the number of cards still dealable.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Burned returns how many cards have been burned since the last shuffle.
func (d *Deck) Burned() int {
	return d.burned
}
