package game

// Street identifies a phase of a hand.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	ShowdownStreet
)

var streetNames = [...]string{"preflop", "flop", "turn", "river", "showdown"}

func (s Street) String() string {
	if s < Preflop || s > ShowdownStreet {
		return "unknown"
	}
	return streetNames[s]
}

// MarshalText lets streets key history maps and serialize by name.
func (s Street) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *Street) UnmarshalText(text []byte) error {
	for i, name := range streetNames {
		if name == string(text) {
			*s = Street(i)
			return nil
		}
	}
	*s = Preflop
	return nil
}

// boardSize returns how many community cards are on the table once the
// street has been dealt.
func (s Street) boardSize() int {
	switch s {
	case Flop:
		return 3
	case Turn:
		return 4
	case River, ShowdownStreet:
		return 5
	default:
		return 0
	}
}

// ActionType classifies a betting action. The zero value None marks a
// missing or unrecognized decision, which Validate corrects to a check
// or fold. SmallBlind and BigBlind appear only as history entries for
// forced posts; agents declaring them are treated as None.
type ActionType int

const (
	None ActionType = iota
	Fold
	Check
	Call
	Bet
	Raise
	AllIn
	SmallBlind
	BigBlind
)

var actionNames = [...]string{
	None:       "none",
	Fold:       "fold",
	Check:      "check",
	Call:       "call",
	Bet:        "bet",
	Raise:      "raise",
	AllIn:      "all-in",
	SmallBlind: "small_blind",
	BigBlind:   "big_blind",
}

func (a ActionType) String() string {
	if a < None || int(a) >= len(actionNames) {
		return "none"
	}
	return actionNames[a]
}

// MarshalText serializes action types by wire name.
func (a ActionType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a wire name. Unknown names decode to None so a
// garbled agent reply degrades to a validator correction rather than a
// transport error.
func (a *ActionType) UnmarshalText(text []byte) error {
	*a = ParseActionType(string(text))
	return nil
}

// ParseActionType maps a wire name to its ActionType, or None when the
// name is not recognized.
func ParseActionType(s string) ActionType {
	for i, name := range actionNames {
		if i != int(None) && name == s {
			return ActionType(i)
		}
	}
	return None
}

// Action is a single entry in a street's betting history.
//
// Amount conventions follow the wire contract: for call it is the
// chips required to match, for bet the absolute street total, for
// raise the additional chips added on top of the actor's own street
// bet, for all-in the actor's entire remaining stack, and for blinds
// the chips actually posted. Fold and check carry zero.
type Action struct {
	Player int        `json:"player"`
	Type   ActionType `json:"type"`
	Amount int        `json:"amount"`
}
