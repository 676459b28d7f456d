package harness

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	gopsproc "github.com/shirou/gopsutil/v4/process"

	"github.com/botfelt/botfelt/internal/botwire"
	"github.com/botfelt/botfelt/internal/deck"
	"github.com/botfelt/botfelt/internal/game"
)

// memPollInterval is how often the memory ceiling is checked while a
// decision is pending.
const memPollInterval = 50 * time.Millisecond

// streamGrace is how long a broken reply stream gets to turn into a
// process exit before it counts as a protocol breach by a live bot.
const streamGrace = 250 * time.Millisecond

// Restricted runs a bot as a child process behind the wire protocol,
// the competition boundary. Every decision runs under a wall-clock
// deadline and a resident-memory ceiling; a violation, crash or
// protocol breach is journaled, the child is killed, and the decision
// is forfeited as none, which the validator downgrades to a check or
// fold. The next decision starts a fresh process, so one incident
// costs the bot a decision and its accumulated state, never the
// tournament.
type Restricted struct {
	command string
	args    []string
	env     []string
	session Session

	timeLimit time.Duration
	memLimit  uint64

	clock    quartz.Clock
	logger   *log.Logger
	sink     EventSink
	memProbe func(pid int32) (uint64, error)

	ctx  context.Context
	proc *process
}

// RestrictedOption configures a Restricted harness.
type RestrictedOption func(*Restricted)

// WithLogger routes harness diagnostics to logger.
func WithLogger(logger *log.Logger) RestrictedOption {
	return func(h *Restricted) {
		h.logger = logger.WithPrefix("harness").With("player", h.session.Name)
	}
}

// WithEventSink registers a sink for bot-execution incidents.
func WithEventSink(sink EventSink) RestrictedOption {
	return func(h *Restricted) { h.sink = sink }
}

// WithTimeLimit sets the per-decision deadline.
func WithTimeLimit(d time.Duration) RestrictedOption {
	return func(h *Restricted) { h.timeLimit = d }
}

// WithMemoryLimit sets the resident-memory ceiling in bytes. Zero
// disables the ceiling.
func WithMemoryLimit(bytes uint64) RestrictedOption {
	return func(h *Restricted) { h.memLimit = bytes }
}

// WithClock substitutes the clock driving deadlines and memory polls.
func WithClock(clock quartz.Clock) RestrictedOption {
	return func(h *Restricted) { h.clock = clock }
}

// WithEnv appends environment variables to the bot process.
func WithEnv(env []string) RestrictedOption {
	return func(h *Restricted) { h.env = env }
}

// NewRestricted prepares a harness for the given bot command. Nothing
// is spawned until Start.
func NewRestricted(command string, args []string, session Session, opts ...RestrictedOption) *Restricted {
	h := &Restricted{
		command:   command,
		args:      args,
		session:   session,
		timeLimit: DefaultTimeLimit,
		memLimit:  DefaultMemoryLimit,
		clock:     quartz.NewReal(),
		logger:    log.New(io.Discard),
		memProbe:  rssProbe,
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// rssProbe reads a process's resident set size.
func rssProbe(pid int32) (uint64, error) {
	proc, err := gopsproc.NewProcess(pid)
	if err != nil {
		return 0, err
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

// Start launches the bot and completes the handshake. A tournament
// refuses to begin on a bot that cannot say hello.
func (h *Restricted) Start(ctx context.Context) error {
	h.ctx = ctx
	proc, err := h.spawn()
	if err != nil {
		return err
	}
	h.proc = proc
	return nil
}

// spawn starts the child and walks it through the handshake under the
// decision deadline.
func (h *Restricted) spawn() (*process, error) {
	proc, err := startProcess(h.ctx, h.command, h.args, h.env, h.logger)
	if err != nil {
		return nil, fmt.Errorf("bot %s: %w", h.session.Name, err)
	}

	hello := botwire.Hello{
		Version:       botwire.Version,
		Seat:          h.session.Seat,
		Name:          h.session.Name,
		Players:       h.session.Players,
		StartingStack: h.session.StartingStack,
		Seed:          h.session.Seed,
	}
	if err := proc.send(botwire.FrameHello, hello); err != nil {
		proc.kill()
		return nil, fmt.Errorf("bot %s: sending hello: %w", h.session.Name, err)
	}

	timedOut := make(chan struct{})
	timer := h.clock.AfterFunc(h.timeLimit, func() { close(timedOut) }, "handshake")
	defer timer.Stop()

	select {
	case frame, ok := <-proc.frames:
		if !ok {
			if h.waitExit(proc) {
				return nil, fmt.Errorf("bot %s exited during handshake: %s", h.session.Name, exitDetail(proc.exitErr))
			}
			proc.kill()
			return nil, fmt.Errorf("bot %s: reply stream broke before ready", h.session.Name)
		}
		if frame.Type != botwire.FrameReady {
			proc.kill()
			return nil, fmt.Errorf("bot %s: answered hello with %s", h.session.Name, frame.Type)
		}
		var ready botwire.Ready
		if err := frame.Payload(&ready); err != nil {
			proc.kill()
			return nil, fmt.Errorf("bot %s: %w", h.session.Name, err)
		}
		if ready.Version != botwire.Version {
			proc.kill()
			return nil, fmt.Errorf("bot %s speaks protocol %d, engine speaks %d",
				h.session.Name, ready.Version, botwire.Version)
		}
		h.logger.Debug("Bot ready", "pid", proc.pid())
		return proc, nil

	case <-proc.done:
		return nil, fmt.Errorf("bot %s exited during handshake: %s", h.session.Name, exitDetail(proc.exitErr))

	case <-timedOut:
		proc.kill()
		return nil, fmt.Errorf("bot %s: no ready within %s", h.session.Name, h.timeLimit)
	}
}

// Decide forwards one decision to the child under the limits. It
// never blocks longer than the deadline and never propagates a bot
// failure: worst case is none, a forfeited decision.
func (h *Restricted) Decide(state *game.PublicState, hole []deck.Card) (game.ActionType, int) {
	if h.proc == nil || !h.proc.alive() {
		if !h.restart(state) {
			return game.None, 0
		}
	}
	proc := h.proc

	// A frame sitting in the buffer now is a stale extra reply from an
	// earlier decision. Only ever answer the question just asked.
	for len(proc.frames) > 0 {
		<-proc.frames
	}

	if h.memLimit > 0 {
		if rss, err := h.memProbe(proc.pid()); err == nil && rss > h.memLimit {
			return h.violation(state, EventMemory, rssDetail(rss, h.memLimit))
		}
	}

	if err := proc.send(botwire.FrameDecide, botwire.Decide{State: state, Hole: hole}); err != nil {
		return h.violation(state, EventCrash, fmt.Sprintf("sending decide: %v", err))
	}

	timedOut := make(chan struct{})
	timer := h.clock.AfterFunc(h.timeLimit, func() { close(timedOut) }, "deadline")
	defer timer.Stop()

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	memViolated := make(chan uint64, 1)
	go h.watchMemory(watchCtx, proc.pid(), memViolated)

	for {
		select {
		case frame, ok := <-proc.frames:
			if !ok {
				if h.waitExit(proc) {
					return h.violation(state, EventCrash, exitDetail(proc.exitErr))
				}
				return h.violation(state, EventProtocol, "reply stream broke")
			}
			if frame.Type != botwire.FrameAction {
				h.logger.Debug("Ignoring frame", "type", frame.Type)
				continue
			}
			var reply botwire.ActionReply
			if err := frame.Payload(&reply); err != nil {
				return h.violation(state, EventProtocol, err.Error())
			}
			return reply.Action, reply.Amount

		case <-proc.done:
			return h.violation(state, EventCrash, exitDetail(proc.exitErr))

		case <-timedOut:
			return h.violation(state, EventTimeout, fmt.Sprintf("no reply within %s", h.timeLimit))

		case rss := <-memViolated:
			return h.violation(state, EventMemory, rssDetail(rss, h.memLimit))
		}
	}
}

// waitExit reports whether the child exits within the stream grace
// period. The reply stream closing a beat ahead of process teardown
// must read as a crash, not a protocol breach.
func (h *Restricted) waitExit(proc *process) bool {
	grace := make(chan struct{})
	timer := h.clock.AfterFunc(streamGrace, func() { close(grace) }, "exit-grace")
	defer timer.Stop()
	select {
	case <-proc.done:
		return true
	case <-grace:
		return false
	}
}

// watchMemory polls the child's resident set until ctx is canceled,
// reporting the first reading over the ceiling.
func (h *Restricted) watchMemory(ctx context.Context, pid int32, violated chan<- uint64) {
	if h.memLimit == 0 {
		return
	}
	ticker := h.clock.NewTicker(memPollInterval, "memory")
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rss, err := h.memProbe(pid)
			if err != nil {
				// Probe failures mean the process is on its way out;
				// the done channel reports that.
				continue
			}
			if rss > h.memLimit {
				select {
				case violated <- rss:
				default:
				}
				return
			}
		}
	}
}

// restart replaces a dead or killed child before a decision. The
// replacement gets the original handshake; whatever state the old
// process accumulated is gone, which is the price of the incident
// that killed it.
func (h *Restricted) restart(state *game.PublicState) bool {
	h.proc = nil
	proc, err := h.spawn()
	if err != nil {
		h.logger.Warn("Bot restart failed", "error", err)
		h.emit(state, EventCrash, fmt.Sprintf("restart failed: %v", err))
		return false
	}
	h.logger.Info("Bot process restarted")
	h.emit(state, EventRestart, "")
	h.proc = proc
	return true
}

// violation journals an incident, retires the child, and forfeits the
// decision.
func (h *Restricted) violation(state *game.PublicState, kind EventKind, detail string) (game.ActionType, int) {
	h.logger.Warn("Bot violation", "kind", kind, "detail", detail)
	h.emit(state, kind, detail)
	if h.proc != nil {
		h.proc.kill()
		h.proc = nil
	}
	return game.None, 0
}

func (h *Restricted) emit(state *game.PublicState, kind EventKind, detail string) {
	if h.sink == nil {
		return
	}
	event := Event{
		Kind:   kind,
		Seat:   h.session.Seat,
		Name:   h.session.Name,
		Detail: detail,
	}
	if state != nil {
		event.Round = state.Round
		event.Street = state.CurrentStreet().String()
	}
	h.sink(event)
}

// NotifyHand sends a finished hand to the bot, best effort. Bots can
// reconstruct the same record from the next snapshot's history, so a
// failed write only logs.
func (h *Restricted) NotifyHand(hand *game.HandResult) {
	if h.proc == nil || !h.proc.alive() {
		return
	}
	if err := h.proc.send(botwire.FrameResult, botwire.Result{Hand: hand}); err != nil {
		h.logger.Debug("Result frame not delivered", "error", err)
	}
}

// Close asks the bot to shut down, then reaps it.
func (h *Restricted) Close() error {
	if h.proc == nil {
		return nil
	}
	if h.proc.alive() {
		if err := h.proc.send(botwire.FrameShutdown, nil); err == nil {
			select {
			case <-h.proc.done:
				h.proc = nil
				return nil
			case <-time.After(stopGrace):
			}
		}
	}
	err := h.proc.stop()
	h.proc = nil
	return err
}

func exitDetail(err error) string {
	if err == nil {
		return "process exited"
	}
	return "process exited: " + err.Error()
}

func rssDetail(rss, limit uint64) string {
	return fmt.Sprintf("resident set %d bytes over the %d byte ceiling", rss, limit)
}
