// Package config loads tournament configuration from HCL files: who
// plays, the blind structure, and the sandbox limits for restricted
// bots.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/botfelt/botfelt/internal/bots"
	"github.com/botfelt/botfelt/internal/game"
)

// Defaults applied when the file leaves a setting out.
const (
	DefaultStartingStack = 1000
	DefaultTimeLimitMs   = 1000
	DefaultMemoryLimitMB = 500
)

// Bot seats one player. Exactly one of Strategy (a built-in played by
// name) or Command (an external executable spoken to over the wire
// protocol) must be set.
type Bot struct {
	Name     string   `hcl:"name,label"`
	Strategy string   `hcl:"strategy,optional"`
	Command  string   `hcl:"command,optional"`
	Args     []string `hcl:"args,optional"`
	Env      []string `hcl:"env,optional"`
}

// External reports whether the seat runs an external executable.
func (b Bot) External() bool { return b.Command != "" }

// BlindLevel raises the blinds from a given round on.
type BlindLevel struct {
	Round int `hcl:"round"`
	Small int `hcl:"small"`
	Big   int `hcl:"big"`
}

// Config is a complete tournament setup. Seed zero means no seed was
// chosen and the launcher should pick one. A zero time or memory
// limit likewise means "use the default", not "unlimited".
type Config struct {
	StartingStack int          `hcl:"starting_stack,optional"`
	MaxRounds     int          `hcl:"max_rounds,optional"`
	Seed          int64        `hcl:"seed,optional"`
	Restricted    *bool        `hcl:"restricted,optional"`
	TimeLimitMs   int          `hcl:"time_limit_ms,optional"`
	MemoryLimitMB int          `hcl:"memory_limit_mb,optional"`
	OutputDir     string       `hcl:"output_dir,optional"`
	Bots          []Bot        `hcl:"bot,block"`
	Levels        []BlindLevel `hcl:"blinds,block"`
}

// Load reads, defaults and validates the configuration file at path.
func Load(path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}
	return decode(file)
}

// Parse loads configuration from an in-memory HCL document. The
// filename only labels diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", filename, diags)
	}
	return decode(file)
}

func decode(file *hcl.File) (*Config, error) {
	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decoding configuration: %w", diags)
	}

	if cfg.StartingStack == 0 {
		cfg.StartingStack = DefaultStartingStack
	}
	if cfg.TimeLimitMs == 0 {
		cfg.TimeLimitMs = DefaultTimeLimitMs
	}
	if cfg.MemoryLimitMB == 0 {
		cfg.MemoryLimitMB = DefaultMemoryLimitMB
	}
	if len(cfg.Levels) == 0 {
		cfg.Levels = []BlindLevel{{Round: 1, Small: 10, Big: 20}}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks everything the file alone can get wrong. Deeper
// rules, like the blind schedule needing a level for round 1, are
// re-checked by the engine at table construction.
func (c *Config) Validate() error {
	if len(c.Bots) < 2 {
		return &game.ConfigurationError{
			Field:  "bot",
			Reason: fmt.Sprintf("need at least 2 bot blocks, have %d", len(c.Bots)),
		}
	}
	names := make(map[string]bool, len(c.Bots))
	for _, b := range c.Bots {
		if names[b.Name] {
			return &game.ConfigurationError{
				Field:  "bot",
				Reason: fmt.Sprintf("duplicate bot name %q", b.Name),
			}
		}
		names[b.Name] = true

		switch {
		case b.Strategy != "" && b.Command != "":
			return &game.ConfigurationError{
				Field:  "bot." + b.Name,
				Reason: "strategy and command are mutually exclusive",
			}
		case b.Strategy == "" && b.Command == "":
			return &game.ConfigurationError{
				Field:  "bot." + b.Name,
				Reason: "needs either strategy or command",
			}
		case b.Strategy != "" && !bots.Known(b.Strategy):
			return &game.ConfigurationError{
				Field:  "bot." + b.Name,
				Reason: fmt.Sprintf("unknown strategy %q (built-in: %s)", b.Strategy, strings.Join(bots.Names(), ", ")),
			}
		case b.Strategy != "" && len(b.Args) > 0:
			return &game.ConfigurationError{
				Field:  "bot." + b.Name,
				Reason: "args apply only to command bots",
			}
		}
	}

	rounds := make(map[int]bool, len(c.Levels))
	for _, l := range c.Levels {
		if rounds[l.Round] {
			return &game.ConfigurationError{
				Field:  "blinds",
				Reason: fmt.Sprintf("two levels for round %d", l.Round),
			}
		}
		rounds[l.Round] = true
	}

	if c.MaxRounds < 0 {
		return &game.ConfigurationError{Field: "max_rounds", Reason: "cannot be negative"}
	}
	if c.TimeLimitMs < 0 {
		return &game.ConfigurationError{Field: "time_limit_ms", Reason: "cannot be negative"}
	}
	if c.MemoryLimitMB < 0 {
		return &game.ConfigurationError{Field: "memory_limit_mb", Reason: "cannot be negative"}
	}
	return nil
}

// RestrictedMode reports whether bots run sandboxed. Unset means yes.
func (c *Config) RestrictedMode() bool {
	return c.Restricted == nil || *c.Restricted
}

// TimeLimit returns the per-decision deadline.
func (c *Config) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitMs) * time.Millisecond
}

// MemoryLimit returns the per-bot memory ceiling in bytes.
func (c *Config) MemoryLimit() uint64 {
	return uint64(c.MemoryLimitMB) << 20
}

// Schedule converts the blinds blocks to the engine's schedule form.
func (c *Config) Schedule() game.BlindSchedule {
	s := make(game.BlindSchedule, len(c.Levels))
	for _, l := range c.Levels {
		s[l.Round] = game.Blinds{Small: l.Small, Big: l.Big}
	}
	return s
}

// Names returns the seat names in file order.
func (c *Config) Names() []string {
	names := make([]string, len(c.Bots))
	for i, b := range c.Bots {
		names[i] = b.Name
	}
	return names
}
