package bot

// Card is a two-character card code: rank in 23456789TJQKA, then suit
// in hdcs, for example "Ah" or "Td".
type Card string

// Rank returns the numeric rank, 2 through 14 with ace high, or 0 for
// a malformed card.
func (c Card) Rank() int {
	if len(c) != 2 {
		return 0
	}
	switch r := c[0]; {
	case r >= '2' && r <= '9':
		return int(r - '0')
	case r == 'T':
		return 10
	case r == 'J':
		return 11
	case r == 'Q':
		return 12
	case r == 'K':
		return 13
	case r == 'A':
		return 14
	default:
		return 0
	}
}

// Suit returns the suit letter, one of 'h', 'd', 'c' or 's', or 0 for
// a malformed card.
func (c Card) Suit() byte {
	if len(c) != 2 {
		return 0
	}
	switch s := c[1]; s {
	case 'h', 'd', 'c', 's':
		return s
	default:
		return 0
	}
}

// Action names a betting decision.
type Action string

// The actions a bot may return from Act. Amounts are additional chips
// for Raise and the absolute street total for Bet; they are ignored
// for everything else.
const (
	Fold  Action = "fold"
	Check Action = "check"
	Call  Action = "call"
	Bet   Action = "bet"
	Raise Action = "raise"
	AllIn Action = "all-in"
)

// Player is one seat's public standing.
type Player struct {
	Stack      int  `json:"stack"`
	CurrentBet int  `json:"current_bet"`
	Active     bool `json:"active"`
	Busted     bool `json:"busted"`
	AllIn      bool `json:"all_in"`
}

// Blinds is a small-blind/big-blind pair.
type Blinds struct {
	Small int `json:"small"`
	Big   int `json:"big"`
}

// Pot is a sealed pot layer with the seats eligible to win it.
type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible_players"`
}

// PastAction is one entry in a street's betting history.
type PastAction struct {
	Player int    `json:"player"`
	Type   string `json:"type"`
	Amount int    `json:"amount"`
}

// StreetRecord is the history of a single street.
type StreetRecord struct {
	Community []Card       `json:"community_cards"`
	Actions   []PastAction `json:"actions"`
}

// ShowdownDetails reveals hole cards and hand names once a hand
// reaches showdown. Keys are seat indexes.
type ShowdownDetails struct {
	Players   []int          `json:"players"`
	Hands     map[int]string `json:"hands"`
	HoleCards map[int][]Card `json:"hole_cards"`
}

// HandRecord is the full history of one hand. Streets is keyed by
// street name: preflop, flop, turn, river.
type HandRecord struct {
	Round    int                      `json:"round"`
	Streets  map[string]*StreetRecord `json:"streets"`
	Showdown *ShowdownDetails         `json:"showdown,omitempty"`
}

// Winning is one seat's share of a finished hand.
type Winning struct {
	Hand  string `json:"hand"`
	Chips int    `json:"chips"`
}

// HandResult summarizes a finished hand.
type HandResult struct {
	Round               int              `json:"round"`
	Button              int              `json:"button"`
	Board               []Card           `json:"board"`
	Pot                 int              `json:"pot"`
	Winners             map[int]Winning  `json:"winners"`
	EligibleForShowdown []int            `json:"eligible_for_showdown,omitempty"`
	Showdown            bool             `json:"showdown"`
	ShowdownDetails     *ShowdownDetails `json:"showdown_details,omitempty"`
	Eliminated          []int            `json:"eliminated,omitempty"`
	FinalStreet         string           `json:"final_street"`
}

// State is the public game state handed to Act. It is the bot's own
// copy; mutating it affects nothing.
type State struct {
	Round         int            `json:"round"`
	Players       []Player       `json:"players"`
	Button        int            `json:"button"`
	Community     []Card         `json:"community_cards"`
	TotalPot      int            `json:"total_pot"`
	Pots          []Pot          `json:"pots"`
	Blinds        Blinds         `json:"blinds"`
	Schedule      map[int]Blinds `json:"blinds_schedule"`
	MinimumRaise  int            `json:"minimum_raise"`
	CurrentHand   *HandRecord    `json:"current_hand"`
	PreviousHands []*HandRecord  `json:"previous_hands"`
}

// Street names the current betting round, derived from the board.
func (s *State) Street() string {
	switch len(s.Community) {
	case 0:
		return "preflop"
	case 3:
		return "flop"
	case 4:
		return "turn"
	default:
		return "river"
	}
}

// CurrentBet returns the highest live street bet at the table.
func (s *State) CurrentBet() int {
	highest := 0
	for _, p := range s.Players {
		if p.CurrentBet > highest {
			highest = p.CurrentBet
		}
	}
	return highest
}

// ToCall returns the chips a seat must still commit to continue.
func (s *State) ToCall(seat int) int {
	return s.CurrentBet() - s.Players[seat].CurrentBet
}

// ActiveSeats returns how many seats still contest the hand.
func (s *State) ActiveSeats() int {
	n := 0
	for _, p := range s.Players {
		if p.Active {
			n++
		}
	}
	return n
}
