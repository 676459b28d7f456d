package game

import "github.com/botfelt/botfelt/internal/deck"

// StreetHistory is the public record of one street: the board as it
// stood once the street was dealt, and every action in order with
// blind posts included.
type StreetHistory struct {
	Community []deck.Card `json:"community_cards"`
	Actions   []Action    `json:"actions"`
}

func (h *StreetHistory) clone() *StreetHistory {
	if h == nil {
		return nil
	}
	c := &StreetHistory{}
	if h.Community != nil {
		c.Community = append([]deck.Card{}, h.Community...)
	}
	if h.Actions != nil {
		c.Actions = append([]Action{}, h.Actions...)
	}
	return c
}

// ShowdownDetails records the full reveal at showdown: every seat
// that reached it, what they held and what their best hand was
// called. Hands that end uncontested carry no ShowdownDetails and
// leak no cards.
type ShowdownDetails struct {
	Players   []int               `json:"players"`
	Hands     map[int]string      `json:"hands"`
	HoleCards map[int][]deck.Card `json:"hole_cards"`
}

func (s *ShowdownDetails) clone() *ShowdownDetails {
	if s == nil {
		return nil
	}
	c := &ShowdownDetails{
		Players:   append([]int{}, s.Players...),
		Hands:     make(map[int]string, len(s.Hands)),
		HoleCards: make(map[int][]deck.Card, len(s.HoleCards)),
	}
	for seat, hand := range s.Hands {
		c.Hands[seat] = hand
	}
	for seat, cards := range s.HoleCards {
		c.HoleCards[seat] = append([]deck.Card{}, cards...)
	}
	return c
}

// HandRecord is the complete public history of one hand. Records of
// finished hands include showdown reveals; the in-progress hand's
// record never does.
type HandRecord struct {
	Round    int                       `json:"round"`
	Streets  map[Street]*StreetHistory `json:"streets"`
	Showdown *ShowdownDetails          `json:"showdown,omitempty"`
}

func newHandRecord(round int) *HandRecord {
	return &HandRecord{
		Round: round,
		Streets: map[Street]*StreetHistory{
			Preflop: {},
			Flop:    {},
			Turn:    {},
			River:   {},
		},
	}
}

func (r *HandRecord) record(street Street, a Action) {
	r.Streets[street].Actions = append(r.Streets[street].Actions, a)
}

func (r *HandRecord) setCommunity(street Street, board []deck.Card) {
	r.Streets[street].Community = append([]deck.Card{}, board...)
}

// Clone deep-copies the record so snapshots never alias engine state.
func (r *HandRecord) Clone() *HandRecord {
	if r == nil {
		return nil
	}
	c := &HandRecord{
		Round:    r.Round,
		Streets:  make(map[Street]*StreetHistory, len(r.Streets)),
		Showdown: r.Showdown.clone(),
	}
	for street, h := range r.Streets {
		c.Streets[street] = h.clone()
	}
	return c
}
