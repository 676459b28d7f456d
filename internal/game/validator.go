package game

// Context is the betting state a declared action is judged against.
type Context struct {
	// CurrentBet is the highest street total committed by any seat.
	CurrentBet int
	// MinimumRaise is the size of the last bet-or-raise increment, or
	// the big blind before any.
	MinimumRaise int
	// RaiseAllowed is false when the actor already acted this street
	// and no full raise re-opened betting since. A short all-in moves
	// the price without restoring the right to raise.
	RaiseAllowed bool
}

// LegalActions enumerates what a seat may declare, so agents can
// self-validate before declaring. Fold is always accepted; declaring
// it with nothing to call becomes a check. MinRaise already includes
// the call, so it is the cheapest amount that lifts the table bet by
// the full minimum. Bet and raise maximums are the full stack, where
// the validator converts to an all-in.
type LegalActions struct {
	Fold       bool `json:"fold"`
	Check      bool `json:"check"`
	Call       bool `json:"call"`
	CallAmount int  `json:"call_amount"`
	Bet        bool `json:"bet"`
	MinBet     int  `json:"min_bet"`
	MaxBet     int  `json:"max_bet"`
	Raise      bool `json:"raise"`
	MinRaise   int  `json:"min_raise"`
	MaxRaise   int  `json:"max_raise"`
}

// Legal computes the legal-action bundle for a seat.
func Legal(p PlayerInfo, ctx Context) LegalActions {
	toCall := ctx.CurrentBet - p.CurrentBet
	la := LegalActions{
		Fold:  true,
		Check: toCall == 0,
		Call:  toCall > 0,
	}
	if la.Call {
		la.CallAmount = min(toCall, p.Stack)
	}
	if ctx.CurrentBet == 0 && p.Stack > 0 {
		la.Bet = true
		la.MinBet = min(ctx.MinimumRaise, p.Stack)
		la.MaxBet = p.Stack
	}
	if ctx.CurrentBet > 0 && p.Stack > toCall && ctx.RaiseAllowed {
		la.Raise = true
		la.MinRaise = min(toCall+ctx.MinimumRaise, p.Stack)
		la.MaxRaise = p.Stack
	}
	return la
}

// Correction records a validator substitution for the illegal-move
// journal.
type Correction struct {
	Round     int    `json:"round"`
	Street    Street `json:"street"`
	Player    int    `json:"player"`
	Declared  Action `json:"declared"`
	Corrected Action `json:"corrected"`
	Reason    string `json:"reason"`
}

// Validate corrects a declared action to the nearest legal one and
// never rejects: a hand must always go on. The returned reason is
// empty when the declaration stood as legal; otherwise it names the
// rule that rewrote it. Normalizations that merely fill in an implied
// amount, such as a call's price or an exact-stack call becoming an
// all-in, report nothing.
//
// Amount conventions: a bet's amount is the absolute street total, a
// raise's is the additional chips added on top of the actor's own
// street bet, so a legal raise amount covers the call and then lifts
// the table bet by at least the minimum. A bet declared into an
// existing bet is re-read as a raise to the same street total.
func Validate(declared Action, p PlayerInfo, ctx Context) (Action, string) {
	toCall := ctx.CurrentBet - p.CurrentBet

	switch declared.Type {
	case Fold:
		if toCall == 0 {
			return Action{Player: declared.Player, Type: Check}, "fold with nothing to call"
		}
		return Action{Player: declared.Player, Type: Fold}, ""

	case Check:
		if toCall > 0 {
			return Action{Player: declared.Player, Type: Fold}, "check facing a bet"
		}
		return Action{Player: declared.Player, Type: Check}, ""

	case Call:
		if toCall == 0 {
			return Action{Player: declared.Player, Type: Check}, "call with nothing to call"
		}
		if p.Stack <= toCall {
			reason := ""
			if p.Stack < toCall {
				reason = "short call converted to all-in"
			}
			return Action{Player: declared.Player, Type: AllIn, Amount: p.Stack}, reason
		}
		return Action{Player: declared.Player, Type: Call, Amount: toCall}, ""

	case Bet:
		if ctx.CurrentBet > 0 {
			if p.Stack <= toCall {
				return Action{Player: declared.Player, Type: Fold}, "bet facing a bet with no raise available"
			}
			return validateRaise(declared.Player, declared.Amount-p.CurrentBet, p, ctx, "bet facing a bet")
		}
		return validateBet(declared.Player, declared.Amount, p, ctx, "")

	case Raise:
		if ctx.CurrentBet == 0 {
			return validateBet(declared.Player, declared.Amount, p, ctx, "raise with no bet to raise")
		}
		return validateRaise(declared.Player, declared.Amount, p, ctx, "")

	case AllIn:
		return Action{Player: declared.Player, Type: AllIn, Amount: p.Stack}, ""

	default:
		if toCall > 0 {
			return Action{Player: declared.Player, Type: Fold}, "unrecognized action"
		}
		return Action{Player: declared.Player, Type: Check}, "unrecognized action"
	}
}

func validateBet(player, amount int, p PlayerInfo, ctx Context, reason string) (Action, string) {
	if amount < ctx.MinimumRaise {
		amount = ctx.MinimumRaise
		reason = firstReason(reason, "bet below minimum")
	}
	if amount >= p.Stack {
		return Action{Player: player, Type: AllIn, Amount: p.Stack},
			firstReason(reason, "bet for entire stack")
	}
	return Action{Player: player, Type: Bet, Amount: amount}, reason
}

func validateRaise(player, amount int, p PlayerInfo, ctx Context, reason string) (Action, string) {
	toCall := ctx.CurrentBet - p.CurrentBet
	if !ctx.RaiseAllowed {
		if p.Stack <= toCall {
			return Action{Player: player, Type: AllIn, Amount: p.Stack},
				firstReason(reason, "raise without betting re-opened")
		}
		return Action{Player: player, Type: Call, Amount: toCall},
			firstReason(reason, "raise without betting re-opened")
	}
	if amount < toCall+ctx.MinimumRaise {
		amount = toCall + ctx.MinimumRaise
		reason = firstReason(reason, "raise below minimum")
	}
	if amount >= p.Stack {
		return Action{Player: player, Type: AllIn, Amount: p.Stack},
			firstReason(reason, "raise for entire stack")
	}
	return Action{Player: player, Type: Raise, Amount: amount}, reason
}

func firstReason(current, fallback string) string {
	if current != "" {
		return current
	}
	return fallback
}
