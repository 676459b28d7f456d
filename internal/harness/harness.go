// Package harness runs tournament bots inside an isolation boundary.
//
// A harness is a game.Agent that stands between the table and a bot.
// Restricted mode runs the bot as a child process behind the wire
// protocol with a wall-clock deadline and a memory ceiling; it is the
// competition default. Unrestricted mode calls a trusted in-process
// agent directly with no limits, for self-play, and still contains
// panics. Either way a misbehaving bot costs itself the decision, not
// the tournament: the harness reports none and the validator turns
// that into a check or fold.
package harness

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/botfelt/botfelt/internal/deck"
	"github.com/botfelt/botfelt/internal/game"
)

// Default decision limits, per the tournament rules.
const (
	DefaultTimeLimit   = time.Second
	DefaultMemoryLimit = 500 << 20
)

// Session identifies the seat a harness plays and the handshake the
// bot receives before the first hand.
type Session struct {
	Seat          int
	Name          string
	Players       int
	StartingStack int
	Seed          int64
}

// EventKind classifies a bot-execution incident.
type EventKind string

const (
	EventTimeout  EventKind = "timeout"
	EventMemory   EventKind = "memory"
	EventCrash    EventKind = "crash"
	EventProtocol EventKind = "protocol"
	EventRestart  EventKind = "restart"
)

// Event records one incident at the isolation boundary: a blown
// deadline, a memory violation, a crash, a wire-protocol breach, or a
// restart after one of those. Events feed the bot-events journal.
type Event struct {
	Kind   EventKind `json:"kind"`
	Seat   int       `json:"seat"`
	Name   string    `json:"name"`
	Round  int       `json:"round"`
	Street string    `json:"street,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// EventSink receives incidents as they happen. Sinks must not block.
type EventSink func(Event)

// Unrestricted runs a trusted agent in process with no limits. The
// only containment is panic recovery: a panicking bot forfeits the
// decision instead of tearing down the hand.
type Unrestricted struct {
	agent   game.Agent
	session Session
	logger  *log.Logger
	sink    EventSink
}

// UnrestrictedOption configures an Unrestricted harness.
type UnrestrictedOption func(*Unrestricted)

// WithUnrestrictedLogger routes harness diagnostics to logger.
func WithUnrestrictedLogger(logger *log.Logger) UnrestrictedOption {
	return func(u *Unrestricted) {
		u.logger = logger.WithPrefix("harness").With("player", u.session.Name)
	}
}

// WithUnrestrictedEventSink registers a sink for incidents.
func WithUnrestrictedEventSink(sink EventSink) UnrestrictedOption {
	return func(u *Unrestricted) { u.sink = sink }
}

// NewUnrestricted wraps a trusted in-process agent.
func NewUnrestricted(agent game.Agent, session Session, opts ...UnrestrictedOption) *Unrestricted {
	u := &Unrestricted{
		agent:   agent,
		session: session,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Decide calls the wrapped agent. A panic becomes none, which the
// validator corrects to a check or fold.
func (u *Unrestricted) Decide(state *game.PublicState, hole []deck.Card) (action game.ActionType, amount int) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		u.logger.Error("Bot panicked", "panic", r)
		u.emit(Event{
			Kind:   EventCrash,
			Seat:   u.session.Seat,
			Name:   u.session.Name,
			Round:  state.Round,
			Street: state.CurrentStreet().String(),
			Detail: fmt.Sprint(r),
		})
		action, amount = game.None, 0
	}()
	return u.agent.Decide(state, hole)
}

// Close closes the wrapped agent if it holds resources.
func (u *Unrestricted) Close() error {
	if closer, ok := u.agent.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (u *Unrestricted) emit(event Event) {
	if u.sink != nil {
		u.sink(event)
	}
}
