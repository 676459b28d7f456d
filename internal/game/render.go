package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/botfelt/botfelt/internal/deck"
)

var streetTitles = map[Street]string{
	Preflop: "PRE-FLOP",
	Flop:    "FLOP",
	Turn:    "TURN",
	River:   "RIVER",
}

// RenderHand formats a finished hand as a plain-text history, one
// street section at a time, for terminal display.
func RenderHand(result *HandResult, names []string) string {
	name := func(seat int) string {
		if seat >= 0 && seat < len(names) {
			return names[seat]
		}
		return fmt.Sprintf("player%d", seat)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hand #%d  (button: %s)\n", result.Round, name(result.Button))

	record := result.Record
	for _, street := range []Street{Preflop, Flop, Turn, River} {
		history := record.Streets[street]
		if history == nil || (len(history.Actions) == 0 && len(history.Community) == 0) {
			continue
		}
		if street == Preflop {
			fmt.Fprintf(&b, "*** %s ***\n", streetTitles[street])
		} else {
			fmt.Fprintf(&b, "*** %s *** [%s]\n", streetTitles[street], cardList(history.Community))
		}
		for _, a := range history.Actions {
			b.WriteString(renderAction(a, name(a.Player)))
			b.WriteByte('\n')
		}
	}

	if details := record.Showdown; details != nil {
		b.WriteString("*** SHOWDOWN ***\n")
		for _, seat := range details.Players {
			fmt.Fprintf(&b, "%s: shows [%s] (%s)\n",
				name(seat), cardList(details.HoleCards[seat]), details.Hands[seat])
		}
	}

	seats := make([]int, 0, len(result.Winners))
	for seat := range result.Winners {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	for _, seat := range seats {
		w := result.Winners[seat]
		if w.Hand == "uncontested" {
			fmt.Fprintf(&b, "%s collects %d (uncontested)\n", name(seat), w.Chips)
		} else {
			fmt.Fprintf(&b, "%s wins %d with %s\n", name(seat), w.Chips, w.Hand)
		}
	}
	for _, seat := range result.Eliminated {
		fmt.Fprintf(&b, "%s is eliminated\n", name(seat))
	}
	return b.String()
}

func renderAction(a Action, name string) string {
	switch a.Type {
	case SmallBlind:
		return fmt.Sprintf("%s: posts small blind %d", name, a.Amount)
	case BigBlind:
		return fmt.Sprintf("%s: posts big blind %d", name, a.Amount)
	case Fold:
		return fmt.Sprintf("%s: folds", name)
	case Check:
		return fmt.Sprintf("%s: checks", name)
	case Call:
		return fmt.Sprintf("%s: calls %d", name, a.Amount)
	case Bet:
		return fmt.Sprintf("%s: bets %d", name, a.Amount)
	case Raise:
		return fmt.Sprintf("%s: raises, putting in %d", name, a.Amount)
	case AllIn:
		return fmt.Sprintf("%s: goes all-in for %d", name, a.Amount)
	default:
		return fmt.Sprintf("%s: %s", name, a.Type)
	}
}

func cardList(cards []deck.Card) string {
	return strings.Join(deck.Strings(cards), " ")
}
