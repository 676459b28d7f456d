package game

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/botfelt/botfelt/internal/deck"
	"github.com/botfelt/botfelt/internal/randutil"
)

// maxSeats is how many players one deck can serve: two hole cards
// each plus three burns and five board cards must fit in 52.
const maxSeats = 22

// Table owns the durable state of a tournament: seats and stacks, the
// button, the round counter, the blinds schedule and the history of
// every finished hand. Hands mutate it one at a time; the Table is
// not safe for concurrent use.
type Table struct {
	logger        *log.Logger
	agents        []Agent
	names         []string
	players       []PlayerInfo
	button        int
	round         int
	blinds        Blinds
	schedule      BlindSchedule
	rng           *rand.Rand
	seed          int64
	history       []*HandRecord
	onCorrection  func(Correction)
	deckFactory   func(*rand.Rand) *deck.Deck
	startingStack int
	totalChips    int
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithSeed seeds the master RNG. Every hand draws its own deck seed
// from it, so one seed reproduces a whole tournament.
func WithSeed(seed int64) TableOption {
	return func(t *Table) {
		t.seed = seed
		t.rng = randutil.New(seed)
	}
}

// WithStartingStack sets each seat's starting chips.
func WithStartingStack(chips int) TableOption {
	return func(t *Table) { t.startingStack = chips }
}

// WithBlindsSchedule sets the round-indexed blind levels.
func WithBlindsSchedule(schedule BlindSchedule) TableOption {
	return func(t *Table) { t.schedule = schedule }
}

// WithNames attaches display names to seats, in seat order.
func WithNames(names []string) TableOption {
	return func(t *Table) { t.names = names }
}

// WithLogger sets the engine logger.
func WithLogger(logger *log.Logger) TableOption {
	return func(t *Table) { t.logger = logger }
}

// WithCorrectionSink registers a callback for validator corrections,
// typically the illegal-move journal.
func WithCorrectionSink(fn func(Correction)) TableOption {
	return func(t *Table) { t.onCorrection = fn }
}

// WithButton sets the starting button seat.
func WithButton(seat int) TableOption {
	return func(t *Table) { t.button = seat }
}

// WithDeckFactory overrides how per-hand decks are built. Tests use
// it with stacked decks to script exact deals.
func WithDeckFactory(factory func(*rand.Rand) *deck.Deck) TableOption {
	return func(t *Table) { t.deckFactory = factory }
}

// NewTable validates the configuration and seats the players. Every
// configuration problem is reported as a *ConfigurationError before
// any cards move.
func NewTable(agents []Agent, opts ...TableOption) (*Table, error) {
	t := &Table{
		logger:        log.New(io.Discard),
		agents:        agents,
		round:         1,
		schedule:      BlindSchedule{1: {Small: 10, Big: 20}},
		deckFactory:   deck.NewDeck,
		startingStack: 1000,
	}
	for _, opt := range opts {
		opt(t)
	}

	if len(agents) < 2 {
		return nil, configErrorf("players", "need at least 2 seats, have %d", len(agents))
	}
	if len(agents) > maxSeats {
		return nil, configErrorf("players", "at most %d seats fit one deck, have %d", maxSeats, len(agents))
	}
	for i, agent := range agents {
		if agent == nil {
			return nil, configErrorf("players", "seat %d has no agent", i)
		}
	}
	if t.startingStack <= 0 {
		return nil, configErrorf("starting_stack", "must be positive, have %d", t.startingStack)
	}
	if err := validateSchedule(t.schedule); err != nil {
		return nil, err
	}
	if t.button < 0 || t.button >= len(agents) {
		return nil, configErrorf("button", "seat %d out of range", t.button)
	}
	if t.names == nil {
		t.names = make([]string, len(agents))
		for i := range t.names {
			t.names[i] = fmt.Sprintf("player%d", i)
		}
	}
	if len(t.names) != len(agents) {
		return nil, configErrorf("names", "%d names for %d seats", len(t.names), len(agents))
	}
	seen := make(map[string]bool, len(t.names))
	for _, name := range t.names {
		if seen[name] {
			return nil, configErrorf("names", "duplicate player name %q", name)
		}
		seen[name] = true
	}
	if t.rng == nil {
		t.seed = time.Now().UnixNano()
		t.rng = randutil.New(t.seed)
	}

	t.players = make([]PlayerInfo, len(agents))
	for i := range t.players {
		t.players[i] = PlayerInfo{Stack: t.startingStack, Active: true}
	}
	t.totalChips = t.startingStack * len(agents)
	t.blinds = t.schedule.At(t.round)
	return t, nil
}

func validateSchedule(schedule BlindSchedule) error {
	if len(schedule) == 0 {
		return configErrorf("blinds_schedule", "no blind levels")
	}
	first := false
	for round, b := range schedule {
		if round < 1 {
			return configErrorf("blinds_schedule", "level for round %d, rounds start at 1", round)
		}
		if round == 1 {
			first = true
		}
		if b.Small < 1 || b.Big < b.Small {
			return configErrorf("blinds_schedule",
				"round %d blinds %d/%d, want 1 <= small <= big", round, b.Small, b.Big)
		}
	}
	if !first {
		return configErrorf("blinds_schedule", "no level for round 1")
	}
	return nil
}

// PlayHand runs one complete hand, carries eliminations and button
// movement forward, and re-checks chip conservation.
func (t *Table) PlayHand(ctx context.Context) (*HandResult, error) {
	if t.Remaining() < 2 {
		return nil, invariantf(t.players, "a hand needs two live seats, have %d", t.Remaining())
	}

	handSeed := int64(t.rng.Uint64())
	h := &Hand{
		logger:       t.logger,
		players:      t.players,
		agents:       t.agents,
		button:       t.button,
		round:        t.round,
		blinds:       t.blinds,
		schedule:     t.schedule,
		deck:         t.deckFactory(randutil.New(handSeed)),
		previous:     t.history,
		onCorrection: t.onCorrection,
	}

	result, err := h.run(ctx)
	if err != nil {
		return nil, err
	}

	t.history = append(t.history, h.record)
	t.button = t.nextLiveSeat(t.button)
	t.round++
	t.blinds = t.schedule.At(t.round)
	if err := t.verifyChips(); err != nil {
		return nil, err
	}
	return result, nil
}

func (t *Table) verifyChips() error {
	total := 0
	for _, p := range t.players {
		total += p.Stack + p.CurrentBet
	}
	if total != t.totalChips {
		return invariantf(t.players, "chips not conserved: have %d, want %d", total, t.totalChips)
	}
	return nil
}

func (t *Table) nextLiveSeat(from int) int {
	n := len(t.players)
	for k := 1; k <= n; k++ {
		seat := (from + k) % n
		if !t.players[seat].Busted {
			return seat
		}
	}
	return from
}

// Remaining returns how many seats still hold chips.
func (t *Table) Remaining() int {
	n := 0
	for _, p := range t.players {
		if !p.Busted {
			n++
		}
	}
	return n
}

// Round returns the current round number, starting at 1.
func (t *Table) Round() int { return t.round }

// Seed returns the master seed the table was built with.
func (t *Table) Seed() int64 { return t.seed }

// Players returns a copy of the seats' public standings.
func (t *Table) Players() []PlayerInfo {
	return append([]PlayerInfo{}, t.players...)
}

// Names returns the seats' display names.
func (t *Table) Names() []string {
	return append([]string{}, t.names...)
}

// History returns the records of every finished hand.
func (t *Table) History() []*HandRecord {
	return append([]*HandRecord{}, t.history...)
}

// Close shuts down agents that hold external resources, such as bot
// subprocesses, in parallel.
func (t *Table) Close() error {
	g := new(errgroup.Group)
	for _, agent := range t.agents {
		if closer, ok := agent.(io.Closer); ok {
			g.Go(closer.Close)
		}
	}
	return g.Wait()
}
