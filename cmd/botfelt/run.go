package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/botfelt/botfelt/internal/bots"
	"github.com/botfelt/botfelt/internal/config"
	"github.com/botfelt/botfelt/internal/game"
	"github.com/botfelt/botfelt/internal/harness"
	"github.com/botfelt/botfelt/internal/journal"
	"github.com/botfelt/botfelt/internal/randutil"
)

// RunCmd plays one tournament to completion and writes its artifacts:
// results.json plus the correction, showdown and bot-event journals.
type RunCmd struct {
	Config string   `short:"c" type:"existingfile" help:"Tournament configuration file (HCL)."`
	Seat   []string `short:"b" name:"bot" placeholder:"NAME=SPEC" help:"Seat a bot: SPEC is a built-in strategy or a command line. Repeatable, appended after the config file's bots."`

	StartingStack *int   `help:"Chips each seat starts with."`
	MaxRounds     *int   `help:"Stop after this many hands."`
	Seed          *int64 `help:"Master seed; the same seed replays the same tournament."`
	Restricted    *bool  `negatable:"" help:"Sandbox bots in subprocesses."`
	TimeLimitMs   *int   `name:"time-limit-ms" help:"Per-decision deadline in milliseconds."`
	MemoryLimitMB *int   `name:"memory-limit-mb" help:"Per-bot memory ceiling in MiB."`
	Output        string `short:"o" help:"Directory for journals and results."`
	ShowHands     bool   `help:"Print every hand history as it finishes."`
}

func (c *RunCmd) Run(logger *log.Logger) error {
	cfg, err := c.buildConfig()
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		logger.Info("No seed configured, picked one", "seed", seed)
	}

	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = "."
	}
	journals, err := journal.OpenSet(outDir, logger)
	if err != nil {
		return err
	}
	defer journals.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seats, err := buildSeats(ctx, cfg, seed, logger, journals)
	if err != nil {
		return err
	}

	table, err := game.NewTable(seats.agents,
		game.WithNames(cfg.Names()),
		game.WithSeed(seed),
		game.WithStartingStack(cfg.StartingStack),
		game.WithBlindsSchedule(cfg.Schedule()),
		game.WithLogger(logger.WithPrefix("engine")),
		game.WithCorrectionSink(journals.Correction),
	)
	if err != nil {
		seats.close(logger)
		return err
	}
	// The table owns the agents from here; Close reaps bot processes.
	defer func() {
		if err := table.Close(); err != nil {
			logger.Warn("Closing bots", "error", err)
		}
	}()

	logger.Info("Tournament starting",
		"players", len(cfg.Bots),
		"stack", cfg.StartingStack,
		"seed", seed,
		"restricted", cfg.RestrictedMode())

	tournament := game.NewTournament(table,
		game.WithMaxRounds(cfg.MaxRounds),
		game.WithHandResultSink(func(result *game.HandResult) {
			journals.HandResult(result)
			for _, h := range seats.wired {
				h.NotifyHand(result)
			}
			if c.ShowHands {
				fmt.Println(game.RenderHand(result, cfg.Names()))
			}
		}),
	)

	result, runErr := tournament.Run(ctx)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warn("Tournament aborted", "reason", runErr)
	}

	if err := journals.WriteResults(result); err != nil {
		return err
	}
	fmt.Println(renderStandings(result))
	return runErr
}

// buildConfig merges the config file, --bot seats and flag overrides,
// in that order of precedence, lowest first.
func (c *RunCmd) buildConfig() (*config.Config, error) {
	var cfg *config.Config
	if c.Config != "" {
		loaded, err := config.Load(c.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{
			StartingStack: config.DefaultStartingStack,
			TimeLimitMs:   config.DefaultTimeLimitMs,
			MemoryLimitMB: config.DefaultMemoryLimitMB,
			Levels:        []config.BlindLevel{{Round: 1, Small: 10, Big: 20}},
		}
	}

	for _, spec := range c.Seat {
		b, err := parseBotSpec(spec)
		if err != nil {
			return nil, err
		}
		cfg.Bots = append(cfg.Bots, b)
	}

	if c.StartingStack != nil {
		cfg.StartingStack = *c.StartingStack
	}
	if c.MaxRounds != nil {
		cfg.MaxRounds = *c.MaxRounds
	}
	if c.Seed != nil {
		cfg.Seed = *c.Seed
	}
	if c.Restricted != nil {
		cfg.Restricted = c.Restricted
	}
	if c.TimeLimitMs != nil {
		cfg.TimeLimitMs = *c.TimeLimitMs
	}
	if c.MemoryLimitMB != nil {
		cfg.MemoryLimitMB = *c.MemoryLimitMB
	}
	if c.Output != "" {
		cfg.OutputDir = c.Output
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseBotSpec reads NAME=SPEC. A SPEC matching a built-in strategy
// seats that strategy; anything else is split on whitespace and run
// as a command.
func parseBotSpec(s string) (config.Bot, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok || name == "" || strings.TrimSpace(spec) == "" {
		return config.Bot{}, fmt.Errorf("bot %q: want NAME=STRATEGY or NAME=COMMAND", s)
	}
	b := config.Bot{Name: name}
	if bots.Known(spec) {
		b.Strategy = spec
		return b, nil
	}
	parts := strings.Fields(spec)
	b.Command = parts[0]
	b.Args = parts[1:]
	return b, nil
}

// seats pairs the agent list with the harnesses that want result
// frames after each hand.
type seats struct {
	agents []game.Agent
	wired  []*harness.Restricted
}

func (s *seats) close(logger *log.Logger) {
	for _, agent := range s.agents {
		closer, ok := agent.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			logger.Warn("Closing bot", "error", err)
		}
	}
}

// buildSeats constructs one harness per configured bot. External
// commands and, in restricted mode, built-in strategies run as
// subprocesses; only unrestricted built-ins stay in-process.
func buildSeats(ctx context.Context, cfg *config.Config, seed int64, logger *log.Logger, journals *journal.Set) (*seats, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating own binary for restricted built-ins: %w", err)
	}

	s := &seats{agents: make([]game.Agent, len(cfg.Bots))}
	for seat, b := range cfg.Bots {
		session := harness.Session{
			Seat:          seat,
			Name:          b.Name,
			Players:       len(cfg.Bots),
			StartingStack: cfg.StartingStack,
			Seed:          randutil.Derive(seed, seat),
		}

		command, args := b.Command, b.Args
		if !b.External() {
			if !cfg.RestrictedMode() {
				agent, err := bots.New(b.Strategy, seat, randutil.New(session.Seed))
				if err != nil {
					s.close(logger)
					return nil, err
				}
				s.agents[seat] = harness.NewUnrestricted(agent, session,
					harness.WithUnrestrictedLogger(logger),
					harness.WithUnrestrictedEventSink(journals.Event),
				)
				continue
			}
			// Built-ins get the same sandbox as strangers: the
			// engine spawns itself serving the strategy.
			command, args = exe, []string{"bot", b.Strategy}
		}

		h := harness.NewRestricted(command, args, session,
			harness.WithLogger(logger),
			harness.WithEventSink(journals.Event),
			harness.WithTimeLimit(cfg.TimeLimit()),
			harness.WithMemoryLimit(cfg.MemoryLimit()),
			harness.WithEnv(b.Env),
		)
		if err := h.Start(ctx); err != nil {
			s.close(logger)
			return nil, fmt.Errorf("starting bot %s: %w", b.Name, err)
		}
		s.agents[seat] = h
		s.wired = append(s.wired, h)
	}
	return s, nil
}
