package game

import (
	"context"
	"sort"

	"github.com/botfelt/botfelt/internal/gameid"
)

// Standing is one row of the final ranking. Survivors rank above
// busted seats; busted seats rank by how long they lasted.
type Standing struct {
	Place      int    `json:"place"`
	Seat       int    `json:"seat"`
	Name       string `json:"name"`
	Stack      int    `json:"stack"`
	BustedHand int    `json:"busted_hand,omitempty"`
}

// TournamentResult is the outcome of a complete run.
type TournamentResult struct {
	ID        string     `json:"id"`
	Seed      int64      `json:"seed"`
	Hands     int        `json:"hands_played"`
	Winner    string     `json:"winner,omitempty"`
	Standings []Standing `json:"standings"`
}

// Tournament plays a table down until one seat holds every chip, the
// hand cap is reached, or the context is cancelled.
type Tournament struct {
	table     *Table
	maxRounds int
	onResult  func(*HandResult)
}

// TournamentOption configures a Tournament.
type TournamentOption func(*Tournament)

// WithMaxRounds caps how many hands are played. Zero means no cap.
func WithMaxRounds(n int) TournamentOption {
	return func(t *Tournament) { t.maxRounds = n }
}

// WithHandResultSink registers a callback invoked after every hand,
// typically a journal or a live display.
func WithHandResultSink(fn func(*HandResult)) TournamentOption {
	return func(t *Tournament) { t.onResult = fn }
}

// NewTournament wraps a table in a runner.
func NewTournament(table *Table, opts ...TournamentOption) *Tournament {
	t := &Tournament{table: table}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run plays hands to completion. On context cancellation it returns
// the standings so far together with the context's error; any engine
// error aborts the run with no result.
func (t *Tournament) Run(ctx context.Context) (*TournamentResult, error) {
	logger := t.table.logger
	bustedAt := make(map[int]int)
	hands := 0

	for t.table.Remaining() > 1 {
		if t.maxRounds > 0 && hands >= t.maxRounds {
			logger.Info("Hand cap reached", "hands", hands)
			break
		}
		if err := ctx.Err(); err != nil {
			return t.result(hands, bustedAt), err
		}

		result, err := t.table.PlayHand(ctx)
		if err != nil {
			return nil, err
		}
		hands++

		for _, seat := range result.Eliminated {
			bustedAt[seat] = result.Round
			logger.Info("Player eliminated",
				"seat", seat,
				"name", t.table.names[seat],
				"round", result.Round,
				"remaining", t.table.Remaining())
		}
		if t.onResult != nil {
			t.onResult(result)
		}
	}

	res := t.result(hands, bustedAt)
	logger.Info("Tournament finished", "id", res.ID, "hands", res.Hands, "winner", res.Winner)
	return res, nil
}

func (t *Tournament) result(hands int, bustedAt map[int]int) *TournamentResult {
	players := t.table.Players()
	standings := make([]Standing, 0, len(players))
	for seat, p := range players {
		standings = append(standings, Standing{
			Seat:       seat,
			Name:       t.table.names[seat],
			Stack:      p.Stack,
			BustedHand: bustedAt[seat],
		})
	}

	// Survivors by stack, then busted seats by how late they fell.
	// Seat order breaks any remaining ties.
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if (a.Stack > 0) != (b.Stack > 0) {
			return a.Stack > 0
		}
		if a.Stack > 0 {
			return a.Stack > b.Stack
		}
		return a.BustedHand > b.BustedHand
	})
	for i := range standings {
		standings[i].Place = i + 1
	}

	res := &TournamentResult{
		ID:        gameid.New(),
		Seed:      t.table.Seed(),
		Hands:     hands,
		Standings: standings,
	}
	if len(standings) > 0 && standings[0].Stack > 0 {
		res.Winner = standings[0].Name
	}
	return res
}
