package game

// PlayerInfo is the public view of a seat. It is everything opponents
// are allowed to know: chips behind, chips committed to the current
// street, and the seat's standing in the hand. Hole cards live with
// the Hand and never appear here.
type PlayerInfo struct {
	// Stack is the chips behind, excluding anything already committed.
	Stack int `json:"stack"`
	// CurrentBet is the chips committed on the current street.
	CurrentBet int `json:"current_bet"`
	// Active reports whether the seat still contests the hand. Busted
	// seats and folded seats are inactive; all-in seats stay active.
	Active bool `json:"active"`
	// Busted marks a seat eliminated from the tournament.
	Busted bool `json:"busted"`
	// AllIn marks a seat that has committed its entire stack. AllIn
	// implies Stack == 0.
	AllIn bool `json:"all_in"`
}

// CanAct reports whether the seat can still make betting decisions
// this hand. All-in seats are active for pot purposes but no longer
// act.
func (p PlayerInfo) CanAct() bool {
	return p.Active && !p.AllIn
}
