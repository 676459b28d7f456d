package game

import "github.com/botfelt/botfelt/internal/deck"

// Blinds is a small-blind/big-blind pair.
type Blinds struct {
	Small int `json:"small"`
	Big   int `json:"big"`
}

// BlindSchedule maps a round number to the blinds that take effect
// there. Lookups use the greatest key at or below the round, so
// {1: 10/20, 10: 25/50} holds 10/20 through round 9 and 25/50 from
// round 10 on.
type BlindSchedule map[int]Blinds

// At returns the blinds in effect for the given round.
func (s BlindSchedule) At(round int) Blinds {
	best := -1
	var blinds Blinds
	for key, b := range s {
		if key <= round && key > best {
			best, blinds = key, b
		}
	}
	return blinds
}

func (s BlindSchedule) clone() BlindSchedule {
	if s == nil {
		return nil
	}
	c := make(BlindSchedule, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// PublicState is everything an agent may see when deciding: public
// seat standings, the board, sealed pots, blinds and complete hand
// histories. It is built fresh for each decision and shares no memory
// with the engine, so agents can keep or mutate it freely. Hole cards
// appear only in past showdowns, never for the hand in progress.
type PublicState struct {
	Round         int           `json:"round"`
	Players       []PlayerInfo  `json:"players"`
	Button        int           `json:"button"`
	Community     []deck.Card   `json:"community_cards"`
	TotalPot      int           `json:"total_pot"`
	Pots          []Pot         `json:"pots"`
	Blinds        Blinds        `json:"blinds"`
	Schedule      BlindSchedule `json:"blinds_schedule"`
	MinimumRaise  int           `json:"minimum_raise"`
	CurrentHand   *HandRecord   `json:"current_hand"`
	PreviousHands []*HandRecord `json:"previous_hands"`
}

// CurrentStreet derives the street from the board.
func (s *PublicState) CurrentStreet() Street {
	switch len(s.Community) {
	case 0:
		return Preflop
	case 3:
		return Flop
	case 4:
		return Turn
	default:
		return River
	}
}

// CurrentBet returns the highest street total among seats. Live
// street bets sit with the players, not in TotalPot, until the street
// settles.
func (s *PublicState) CurrentBet() int {
	highest := 0
	for _, p := range s.Players {
		if p.CurrentBet > highest {
			highest = p.CurrentBet
		}
	}
	return highest
}

// ToCall returns the chips a seat must still commit to continue.
func (s *PublicState) ToCall(seat int) int {
	return s.CurrentBet() - s.Players[seat].CurrentBet
}

// ActiveSeats returns how many seats still contest the hand.
func (s *PublicState) ActiveSeats() int {
	n := 0
	for _, p := range s.Players {
		if p.Active {
			n++
		}
	}
	return n
}

// Legal computes the legal-action bundle for a seat from public
// state. The re-opening restriction after a short all-in is private
// to the engine, so in that rare spot Legal can offer a raise the
// validator will demote to a call.
func (s *PublicState) Legal(seat int) LegalActions {
	return Legal(s.Players[seat], Context{
		CurrentBet:   s.CurrentBet(),
		MinimumRaise: s.MinimumRaise,
		RaiseAllowed: true,
	})
}
