package game

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/botfelt/botfelt/internal/deck"
	"github.com/botfelt/botfelt/internal/evaluator"
)

// pollBudget bounds agent polls within one hand. Chips are integers
// and every full raise must grow by at least the big blind, so a hand
// that polls this often has a broken betting loop, not a long one.
const pollBudget = 10000

// Winning is one seat's take from a hand.
type Winning struct {
	Hand  string `json:"hand"`
	Chips int    `json:"chips"`
}

// HandResult summarizes a completed hand.
type HandResult struct {
	Round               int              `json:"round"`
	Button              int              `json:"button"`
	Board               []deck.Card      `json:"board"`
	Pot                 int              `json:"pot"`
	Winners             map[int]Winning  `json:"winners"`
	EligibleForShowdown []int            `json:"eligible_for_showdown,omitempty"`
	Showdown            bool             `json:"showdown"`
	ShowdownDetails     *ShowdownDetails `json:"showdown_details,omitempty"`
	Eliminated          []int            `json:"eliminated,omitempty"`
	FinalStreet         Street           `json:"final_street"`

	// Record is the full history of the hand, for rendering. It is
	// the same record the Table appends to its history.
	Record *HandRecord `json:"-"`
}

// Hand is the state machine for a single hand: deal, four betting
// streets, pot reconciliation and payout. It mutates the player slice
// it is given, so the Table's stacks carry the outcome forward.
type Hand struct {
	logger       *log.Logger
	players      []PlayerInfo
	agents       []Agent
	button       int
	round        int
	blinds       Blinds
	schedule     BlindSchedule
	deck         *deck.Deck
	hole         [][]deck.Card
	board        []deck.Card
	ledger       *Ledger
	betting      *bettingRound
	forced       []int
	street       Street
	actor        int
	pots         []Pot
	record       *HandRecord
	previous     []*HandRecord
	onCorrection func(Correction)
	chips        int
	polls        int
}

// run plays the hand to completion. Any returned error is fatal to
// the tournament: either the context was cancelled mid-hand or an
// engine invariant broke.
func (h *Hand) run(ctx context.Context) (*HandResult, error) {
	if err := h.setup(); err != nil {
		return nil, err
	}
	for _, street := range []Street{Preflop, Flop, Turn, River} {
		h.street = street
		if street != Preflop {
			if err := h.dealBoard(street); err != nil {
				return nil, err
			}
		}
		contested, err := h.runBetting(ctx)
		if err != nil {
			return nil, err
		}
		if !contested {
			return h.finish(false)
		}
	}
	return h.finish(true)
}

func (h *Hand) setup() error {
	for i := range h.players {
		p := &h.players[i]
		p.CurrentBet = 0
		p.AllIn = false
		p.Active = !p.Busted
	}
	h.street = Preflop
	h.chips = 0
	for _, p := range h.players {
		h.chips += p.Stack
	}
	h.ledger = NewLedger(len(h.players))
	h.betting = newBettingRound(len(h.players), h.blinds.Big)
	h.forced = make([]int, len(h.players))
	h.record = newHandRecord(h.round)

	h.hole = make([][]deck.Card, len(h.players))
	for i := range h.players {
		if h.players[i].Busted {
			continue
		}
		cards, err := h.deck.Deal(2)
		if err != nil {
			return invariantf(nil, "deck exhausted dealing hole cards: %v", err)
		}
		h.hole[i] = cards
	}

	h.postBlinds()
	h.logger.Debug("Hand started",
		"round", h.round, "button", h.button,
		"blinds", h.blinds, "seats", h.liveSeats())
	return nil
}

// postBlinds posts the forced bets and seats the first preflop actor.
// Heads-up the button posts the small blind and acts first preflop.
func (h *Hand) postBlinds() {
	var sb int
	if h.liveSeats() == 2 && !h.players[h.button].Busted {
		sb = h.button
	} else {
		sb = h.nextLive(h.button)
	}
	bb := h.nextLive(sb)
	h.postBlind(sb, SmallBlind, h.blinds.Small)
	h.postBlind(bb, BigBlind, h.blinds.Big)
	h.actor = h.nextLive(bb)
}

// postBlind commits a forced bet. Short stacks post what they have
// and are all-in from the blind.
func (h *Hand) postBlind(seat int, kind ActionType, amount int) {
	p := &h.players[seat]
	posted := min(amount, p.Stack)
	p.Stack -= posted
	p.CurrentBet += posted
	if p.Stack == 0 {
		p.AllIn = true
	}
	h.ledger.Contribute(seat, posted)
	h.betting.postBlind(*p)
	h.forced[seat] = posted
	h.record.record(Preflop, Action{Player: seat, Type: kind, Amount: posted})
	h.logger.Debug("Posted blind", "player", seat, "blind", kind, "amount", posted)
}

// runBetting polls agents until the street's betting closes, then
// settles the street. It reports whether the hand is still contested.
func (h *Hand) runBetting(ctx context.Context) (bool, error) {
	if h.street != Preflop {
		h.betting.reset()
		h.actor = h.nextLive(h.button)
	}

	for !h.betting.complete(h.players) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		seat := h.actor
		h.actor = h.nextLive(seat)
		p := h.players[seat]
		if !p.CanAct() {
			continue
		}
		if h.polls++; h.polls > pollBudget {
			return false, invariantf(h.diagnostic(), "betting round did not terminate")
		}

		declType, declAmount := h.agents[seat].Decide(h.snapshot(), h.holeFor(seat))
		declared := Action{Player: seat, Type: declType, Amount: declAmount}
		corrected, reason := Validate(declared, p, h.betting.context(seat))
		if reason != "" {
			h.correct(declared, corrected, reason)
		}
		if err := h.apply(seat, corrected); err != nil {
			return false, err
		}
	}

	if err := h.settleStreet(); err != nil {
		return false, err
	}
	return h.activeSeats() > 1, nil
}

// apply mutates chips and state for an already-validated action.
func (h *Hand) apply(seat int, a Action) error {
	p := &h.players[seat]
	var err error
	switch a.Type {
	case Fold:
		p.Active = false
	case Check:
	case Call, Bet, Raise:
		// All three amounts are the chips moving from the stack now: a
		// bet starts from an empty street bet and a raise already
		// includes the call.
		err = h.commit(seat, a.Amount)
	case AllIn:
		err = h.commit(seat, p.Stack)
	default:
		err = invariantf(a, "unapplicable action %s", a.Type)
	}
	if err != nil {
		return err
	}

	h.record.record(h.street, a)
	h.betting.observe(seat, *p)
	h.logger.Debug("Player action",
		"street", h.street, "player", seat,
		"action", a.Type, "amount", a.Amount,
		"bet", p.CurrentBet, "stack", p.Stack)
	return nil
}

// commit moves chips from a seat's stack onto the street. The
// validator guarantees affordability, so failure here is an engine
// bug.
func (h *Hand) commit(seat, amount int) error {
	p := &h.players[seat]
	if amount < 0 || amount > p.Stack {
		return invariantf(h.diagnostic(),
			"seat %d cannot commit %d with stack %d", seat, amount, p.Stack)
	}
	p.Stack -= amount
	p.CurrentBet += amount
	h.ledger.Contribute(seat, amount)
	if p.Stack == 0 {
		p.AllIn = true
	}
	return nil
}

// settleStreet returns any uncalled bet, sweeps street bets and
// rebuilds the pot layers.
func (h *Hand) settleStreet() error {
	if seat, amount := h.ledger.ReturnUncalled(h.players, h.forced); amount > 0 {
		h.logger.Debug("Returned uncalled bet", "player", seat, "amount", amount)
	}
	for i := range h.players {
		h.players[i].CurrentBet = 0
		h.forced[i] = 0
	}
	h.pots = h.ledger.Reconcile(h.players, h.button)
	return h.verifyChips()
}

// finish reveals, distributes and reports the hand's outcome.
func (h *Hand) finish(showdown bool) (*HandResult, error) {
	h.pots = h.ledger.Reconcile(h.players, h.button)
	result := &HandResult{
		Round:       h.round,
		Button:      h.button,
		Board:       append([]deck.Card{}, h.board...),
		Pot:         h.ledger.Total(),
		Winners:     make(map[int]Winning),
		Showdown:    showdown,
		FinalStreet: h.street,
		Record:      h.record,
	}

	if showdown {
		details := &ShowdownDetails{
			Hands:     make(map[int]string),
			HoleCards: make(map[int][]deck.Card),
		}
		for seat, p := range h.players {
			if !p.Active {
				continue
			}
			cards := append(append([]deck.Card{}, h.hole[seat]...), h.board...)
			details.Players = append(details.Players, seat)
			details.Hands[seat] = evaluator.Evaluate(cards).Category.String()
			details.HoleCards[seat] = append([]deck.Card{}, h.hole[seat]...)
		}
		result.ShowdownDetails = details
		result.EligibleForShowdown = append([]int{}, details.Players...)
		h.record.Showdown = details
	}

	if err := h.distribute(result, showdown); err != nil {
		return nil, err
	}
	h.ledger.drain()

	for i := range h.players {
		p := &h.players[i]
		if !p.Busted && p.Stack == 0 {
			p.Busted = true
			p.Active = false
			p.AllIn = false
			result.Eliminated = append(result.Eliminated, i)
		}
	}

	if err := h.verifyChips(); err != nil {
		return nil, err
	}
	h.logger.Debug("Hand complete",
		"round", h.round, "pot", result.Pot,
		"showdown", showdown, "street", result.FinalStreet,
		"winners", result.Winners)
	return result, nil
}

// distribute pays each pot to its best eligible hand, odd chip to the
// winner closest clockwise from the button.
func (h *Hand) distribute(result *HandResult, showdown bool) error {
	distributed := 0
	for _, pot := range h.pots {
		if len(pot.Eligible) == 0 {
			return invariantf(h.diagnostic(), "pot of %d with no eligible seats", pot.Amount)
		}
		winners := pot.Eligible
		if len(winners) > 1 {
			winners = evaluator.DetermineWinners(h.hole, h.board, pot.Eligible)
			if len(winners) == 0 {
				return invariantf(h.diagnostic(), "no winners for pot of %d", pot.Amount)
			}
		}

		share := pot.Amount / len(winners)
		remainder := pot.Amount % len(winners)
		for i, seat := range winners {
			take := share
			if i == 0 {
				take += remainder
			}
			h.players[seat].Stack += take
			w := result.Winners[seat]
			w.Chips += take
			w.Hand = "uncontested"
			if showdown {
				w.Hand = result.ShowdownDetails.Hands[seat]
			}
			result.Winners[seat] = w
		}
		distributed += pot.Amount
	}

	if distributed != result.Pot {
		return invariantf(h.diagnostic(), "distributed %d of a %d pot", distributed, result.Pot)
	}
	return nil
}

func (h *Hand) dealBoard(street Street) error {
	want := street.boardSize() - len(h.board)
	if want <= 0 {
		return nil
	}
	if err := h.deck.Burn(); err != nil {
		return invariantf(nil, "deck exhausted burning before the %s: %v", street, err)
	}
	cards, err := h.deck.Deal(want)
	if err != nil {
		return invariantf(nil, "deck exhausted dealing the %s: %v", street, err)
	}
	h.board = append(h.board, cards...)
	h.record.setCommunity(street, h.board)
	h.logger.Debug("Dealt board", "street", street, "board", deck.Strings(h.board))
	return nil
}

// snapshot builds the deep-copied public view handed to agents.
func (h *Hand) snapshot() *PublicState {
	players := make([]PlayerInfo, len(h.players))
	copy(players, h.players)

	pots := make([]Pot, len(h.pots))
	total := 0
	for i, pot := range h.pots {
		pots[i] = Pot{Amount: pot.Amount, Eligible: append([]int{}, pot.Eligible...)}
		total += pot.Amount
	}

	previous := make([]*HandRecord, len(h.previous))
	for i, r := range h.previous {
		previous[i] = r.Clone()
	}

	return &PublicState{
		Round:         h.round,
		Players:       players,
		Button:        h.button,
		Community:     append([]deck.Card{}, h.board...),
		TotalPot:      total,
		Pots:          pots,
		Blinds:        h.blinds,
		Schedule:      h.schedule.clone(),
		MinimumRaise:  h.betting.minRaise,
		CurrentHand:   h.record.Clone(),
		PreviousHands: previous,
	}
}

func (h *Hand) holeFor(seat int) []deck.Card {
	return append([]deck.Card{}, h.hole[seat]...)
}

func (h *Hand) correct(declared, corrected Action, reason string) {
	h.logger.Debug("Corrected illegal action",
		"street", h.street, "player", declared.Player,
		"declared", declared.Type, "declared_amount", declared.Amount,
		"corrected", corrected.Type, "corrected_amount", corrected.Amount,
		"reason", reason)
	if h.onCorrection != nil {
		h.onCorrection(Correction{
			Round:     h.round,
			Street:    h.street,
			Player:    declared.Player,
			Declared:  declared,
			Corrected: corrected,
			Reason:    reason,
		})
	}
}

// verifyChips checks that stacks plus contributions still add up to
// the chips the hand started with. Live street bets are part of the
// ledger from the moment they are committed, so this identity holds
// at any point in the hand.
func (h *Hand) verifyChips() error {
	total := h.ledger.Total()
	for _, p := range h.players {
		total += p.Stack
	}
	if total != h.chips {
		return invariantf(h.diagnostic(), "chips not conserved: have %d, want %d", total, h.chips)
	}
	return nil
}

func (h *Hand) activeSeats() int {
	n := 0
	for _, p := range h.players {
		if p.Active {
			n++
		}
	}
	return n
}

func (h *Hand) liveSeats() int {
	n := 0
	for _, p := range h.players {
		if !p.Busted {
			n++
		}
	}
	return n
}

// nextLive returns the next non-busted seat clockwise from the given
// one.
func (h *Hand) nextLive(from int) int {
	n := len(h.players)
	for k := 1; k <= n; k++ {
		seat := (from + k) % n
		if !h.players[seat].Busted {
			return seat
		}
	}
	return from
}

// diagnostic bundles the hand state that matters when an invariant
// breaks. Hole cards stay out of it; invariant dumps can end up in
// logs bots read.
func (h *Hand) diagnostic() any {
	return struct {
		Round         int
		Street        Street
		Button        int
		Players       []PlayerInfo
		Contributions []int
		Pots          []Pot
		CurrentBet    int
		MinimumRaise  int
	}{
		Round:         h.round,
		Street:        h.street,
		Button:        h.button,
		Players:       h.players,
		Contributions: h.ledger.contributions,
		Pots:          h.pots,
		CurrentBet:    h.betting.currentBet,
		MinimumRaise:  h.betting.minRaise,
	}
}
