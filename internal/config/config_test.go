package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/botfelt/botfelt/internal/game"
)

const fullConfig = `
starting_stack  = 5000
max_rounds      = 250
seed            = 99
restricted      = false
time_limit_ms   = 250
memory_limit_mb = 64
output_dir      = "out"

bot "alice" {
  strategy = "equity"
}

bot "bob" {
  command = "./bots/champion"
  args    = ["--aggression", "0.7"]
  env     = ["CHAMPION_MODE=tournament"]
}

blinds {
  round = 1
  small = 25
  big   = 50
}

blinds {
  round = 20
  small = 50
  big   = 100
}
`

func TestParseFullConfig(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(fullConfig), "full.hcl")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.StartingStack != 5000 || cfg.MaxRounds != 250 || cfg.Seed != 99 {
		t.Errorf("scalars = %d/%d/%d", cfg.StartingStack, cfg.MaxRounds, cfg.Seed)
	}
	if cfg.RestrictedMode() {
		t.Error("restricted = false in the file, RestrictedMode() = true")
	}
	if got := cfg.TimeLimit(); got != 250*time.Millisecond {
		t.Errorf("TimeLimit() = %v", got)
	}
	if got := cfg.MemoryLimit(); got != 64<<20 {
		t.Errorf("MemoryLimit() = %d", got)
	}
	if cfg.OutputDir != "out" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}

	names := cfg.Names()
	if len(names) != 2 || names[0] != "alice" || names[1] != "bob" {
		t.Errorf("Names() = %v", names)
	}
	if cfg.Bots[0].External() || !cfg.Bots[1].External() {
		t.Errorf("External flags wrong: %+v", cfg.Bots)
	}
	if cfg.Bots[1].Args[1] != "0.7" || cfg.Bots[1].Env[0] != "CHAMPION_MODE=tournament" {
		t.Errorf("command bot = %+v", cfg.Bots[1])
	}

	schedule := cfg.Schedule()
	if schedule[1] != (game.Blinds{Small: 25, Big: 50}) || schedule[20] != (game.Blinds{Small: 50, Big: 100}) {
		t.Errorf("Schedule() = %v", schedule)
	}
	if got := schedule.At(19); got != (game.Blinds{Small: 25, Big: 50}) {
		t.Errorf("At(19) = %v", got)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
bot "a" { strategy = "folder" }
bot "b" { strategy = "callingstation" }
`), "minimal.hcl")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.StartingStack != DefaultStartingStack {
		t.Errorf("StartingStack = %d", cfg.StartingStack)
	}
	if cfg.TimeLimit() != time.Second {
		t.Errorf("TimeLimit() = %v", cfg.TimeLimit())
	}
	if cfg.MemoryLimit() != 500<<20 {
		t.Errorf("MemoryLimit() = %d", cfg.MemoryLimit())
	}
	if !cfg.RestrictedMode() {
		t.Error("RestrictedMode() should default to true")
	}
	if cfg.MaxRounds != 0 || cfg.Seed != 0 {
		t.Errorf("MaxRounds/Seed = %d/%d, want unset", cfg.MaxRounds, cfg.Seed)
	}
	if got := cfg.Schedule().At(1); got != (game.Blinds{Small: 10, Big: 20}) {
		t.Errorf("default blinds = %v", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "one bot",
			src:  `bot "solo" { strategy = "folder" }`,
			want: "at least 2 bot blocks",
		},
		{
			name: "duplicate names",
			src: `
bot "twin" { strategy = "folder" }
bot "twin" { strategy = "allin" }`,
			want: `duplicate bot name "twin"`,
		},
		{
			name: "strategy and command",
			src: `
bot "a" { strategy = "folder" }
bot "b" {
  strategy = "allin"
  command  = "./bot"
}`,
			want: "mutually exclusive",
		},
		{
			name: "neither strategy nor command",
			src: `
bot "a" { strategy = "folder" }
bot "b" {}`,
			want: "needs either strategy or command",
		},
		{
			name: "unknown strategy",
			src: `
bot "a" { strategy = "folder" }
bot "b" { strategy = "gto" }`,
			want: `unknown strategy "gto"`,
		},
		{
			name: "args on a built-in",
			src: `
bot "a" { strategy = "folder" }
bot "b" {
  strategy = "allin"
  args     = ["-v"]
}`,
			want: "args apply only to command bots",
		},
		{
			name: "duplicate blind level",
			src: `
bot "a" { strategy = "folder" }
bot "b" { strategy = "allin" }
blinds {
  round = 5
  small = 10
  big   = 20
}
blinds {
  round = 5
  small = 25
  big   = 50
}`,
			want: "two levels for round 5",
		},
		{
			name: "negative max_rounds",
			src: `
max_rounds = -1
bot "a" { strategy = "folder" }
bot "b" { strategy = "allin" }`,
			want: "max_rounds",
		},
		{
			name: "negative time limit",
			src: `
time_limit_ms = -5
bot "a" { strategy = "folder" }
bot "b" { strategy = "allin" }`,
			want: "time_limit_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.src), tt.name+".hcl")
			if err == nil {
				t.Fatal("config should not validate")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
			var cerr *game.ConfigurationError
			if !errors.As(err, &cerr) {
				t.Errorf("error %T is not a *game.ConfigurationError", err)
			}
		})
	}
}

func TestParseRejectsMalformedHCL(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte(`bot "a" {`), "broken.hcl"); err == nil {
		t.Fatal("unterminated block should not parse")
	}
	if _, err := Parse([]byte(`bots = ["a", "b"]`), "wrong.hcl"); err == nil {
		t.Fatal("unknown attribute should not decode")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tournament.hcl")
	if err := os.WriteFile(path, []byte(fullConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Bots) != 2 {
		t.Errorf("loaded %d bots, want 2", len(cfg.Bots))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.hcl")); err == nil {
		t.Fatal("missing file should fail to load")
	}
}
