// Package evaluator ranks hold'em hands by category and kickers.
//
// Evaluate accepts between two and seven cards. Given five or more it
// scores every five-card subset and keeps the best; given fewer it
// scores the cards as they stand, which can only make pair-family
// hands. The result carries the category name used in showdown
// records plus the ranks that break ties within the category.
package evaluator

import (
	"fmt"

	"github.com/botfelt/botfelt/internal/deck"
)

// Category orders hand classes from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota + 1
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var categoryNames = [...]string{
	HighCard:      "high_card",
	OnePair:       "one_pair",
	TwoPair:       "two_pair",
	ThreeOfAKind:  "three_of_a_kind",
	Straight:      "straight",
	Flush:         "flush",
	FullHouse:     "full_house",
	FourOfAKind:   "four_of_a_kind",
	StraightFlush: "straight_flush",
	RoyalFlush:    "royal_flush",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) && categoryNames[c] != "" {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// Value is a comparable hand strength: the category plus tiebreak
// ranks in descending significance. Two royal flushes always tie, so
// the royal carries no tiebreaks at all.
type Value struct {
	Category Category
	TieBreak []int
}

// Compare returns -1 if v is weaker than o, 0 on a tie, +1 if
// stronger. Tiebreaks compare lexicographically.
func (v Value) Compare(o Value) int {
	if v.Category != o.Category {
		if v.Category < o.Category {
			return -1
		}
		return 1
	}
	n := len(v.TieBreak)
	if len(o.TieBreak) < n {
		n = len(o.TieBreak)
	}
	for i := 0; i < n; i++ {
		if v.TieBreak[i] != o.TieBreak[i] {
			if v.TieBreak[i] < o.TieBreak[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(v.TieBreak) < len(o.TieBreak):
		return -1
	case len(v.TieBreak) > len(o.TieBreak):
		return 1
	}
	return 0
}

func (v Value) String() string {
	if len(v.TieBreak) == 0 {
		return v.Category.String()
	}
	return fmt.Sprintf("%s%v", v.Category, v.TieBreak)
}

// Evaluate scores the best five-card hand available in cards. It
// panics unless given two to seven cards; the engine never holds
// fewer than the hole cards nor more than hole plus board.
func Evaluate(cards []deck.Card) Value {
	n := len(cards)
	if n < 2 || n > 7 {
		panic(fmt.Sprintf("evaluator: %d cards, want 2 to 7", n))
	}
	if n <= 5 {
		return score(cards)
	}

	var best Value
	hand := make([]deck.Card, 0, 5)
	consider := func() {
		if v := score(hand); best.Category == 0 || v.Compare(best) > 0 {
			best = v
		}
	}
	if n == 6 {
		for skip := 0; skip < 6; skip++ {
			hand = hand[:0]
			for k, c := range cards {
				if k != skip {
					hand = append(hand, c)
				}
			}
			consider()
		}
		return best
	}
	for i := 0; i < 7; i++ {
		for j := i + 1; j < 7; j++ {
			hand = hand[:0]
			for k, c := range cards {
				if k != i && k != j {
					hand = append(hand, c)
				}
			}
			consider()
		}
	}
	return best
}

// score ranks an exact hand of two to five cards. Straights and
// flushes only exist at five cards.
func score(cards []deck.Card) Value {
	var count [15]int
	for _, c := range cards {
		count[c.Rank]++
	}

	var quads, trips, pairs, singles []int
	for r := int(deck.Ace); r >= int(deck.Two); r-- {
		switch count[r] {
		case 4:
			quads = append(quads, r)
		case 3:
			trips = append(trips, r)
		case 2:
			pairs = append(pairs, r)
		case 1:
			singles = append(singles, r)
		}
	}

	if len(cards) == 5 {
		flush := true
		for _, c := range cards[1:] {
			if c.Suit != cards[0].Suit {
				flush = false
				break
			}
		}
		high := straightHigh(count)
		switch {
		case flush && high == int(deck.Ace):
			return Value{Category: RoyalFlush}
		case flush && high > 0:
			return Value{Category: StraightFlush, TieBreak: []int{high}}
		case len(quads) > 0:
			return Value{Category: FourOfAKind, TieBreak: append([]int{quads[0]}, singles...)}
		case len(trips) > 0 && len(pairs) > 0:
			return Value{Category: FullHouse, TieBreak: []int{trips[0], pairs[0]}}
		case flush:
			return Value{Category: Flush, TieBreak: singles}
		case high > 0:
			return Value{Category: Straight, TieBreak: []int{high}}
		}
	}

	switch {
	case len(quads) > 0:
		return Value{Category: FourOfAKind, TieBreak: append([]int{quads[0]}, singles...)}
	case len(trips) > 0:
		return Value{Category: ThreeOfAKind, TieBreak: append([]int{trips[0]}, singles...)}
	case len(pairs) >= 2:
		return Value{Category: TwoPair, TieBreak: append([]int{pairs[0], pairs[1]}, singles...)}
	case len(pairs) == 1:
		return Value{Category: OnePair, TieBreak: append([]int{pairs[0]}, singles...)}
	default:
		return Value{Category: HighCard, TieBreak: singles}
	}
}

// straightHigh returns the top rank of a five-card straight, 5 for
// the wheel, or 0 when the ranks do not run.
func straightHigh(count [15]int) int {
	run := 0
	for r := int(deck.Ace); r >= int(deck.Two); r-- {
		if count[r] == 0 {
			run = 0
			continue
		}
		run++
		if run == 5 {
			return r + 4
		}
	}
	if count[deck.Ace] > 0 && count[deck.Two] > 0 && count[deck.Three] > 0 &&
		count[deck.Four] > 0 && count[deck.Five] > 0 {
		return int(deck.Five)
	}
	return 0
}

// DetermineWinners evaluates every eligible seat's hole cards against
// the community cards and returns the seats holding the best hand.
// Ties return every tied seat, preserving the order of eligible so
// callers can pass payout order through.
func DetermineWinners(holes [][]deck.Card, community []deck.Card, eligible []int) []int {
	var (
		winners []int
		best    Value
	)
	for _, seat := range eligible {
		if seat < 0 || seat >= len(holes) || len(holes[seat]) == 0 {
			continue
		}
		cards := make([]deck.Card, 0, len(holes[seat])+len(community))
		cards = append(cards, holes[seat]...)
		cards = append(cards, community...)
		v := Evaluate(cards)
		switch {
		case len(winners) == 0 || v.Compare(best) > 0:
			winners = append(winners[:0], seat)
			best = v
		case v.Compare(best) == 0:
			winners = append(winners, seat)
		}
	}
	return winners
}
