package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/botfelt/botfelt/internal/config"
	"github.com/botfelt/botfelt/internal/game"
	"github.com/botfelt/botfelt/internal/journal"
)

func TestParseBotSpec(t *testing.T) {
	tests := []struct {
		spec    string
		want    config.Bot
		wantErr bool
	}{
		{spec: "foldy=folder", want: config.Bot{Name: "foldy", Strategy: "folder"}},
		{spec: "rng=random", want: config.Bot{Name: "rng", Strategy: "random"}},
		{
			spec: "champ=./mybot --level 3",
			want: config.Bot{Name: "champ", Command: "./mybot", Args: []string{"--level", "3"}},
		},
		{spec: "solo=/usr/bin/bot", want: config.Bot{Name: "solo", Command: "/usr/bin/bot"}},
		{spec: "nospec", wantErr: true},
		{spec: "=folder", wantErr: true},
		{spec: "empty=", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseBotSpec(tt.spec)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseBotSpec(%q) should fail", tt.spec)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseBotSpec(%q): %v", tt.spec, err)
			continue
		}
		if got.Name != tt.want.Name || got.Strategy != tt.want.Strategy || got.Command != tt.want.Command {
			t.Errorf("parseBotSpec(%q) = %+v, want %+v", tt.spec, got, tt.want)
		}
		if len(got.Args) != len(tt.want.Args) {
			t.Errorf("parseBotSpec(%q) args = %v, want %v", tt.spec, got.Args, tt.want.Args)
		}
	}
}

func TestBuildConfigFlagsAlone(t *testing.T) {
	stack, rounds := 5000, 42
	cmd := &RunCmd{
		Seat:          []string{"a=folder", "b=allin"},
		StartingStack: &stack,
		MaxRounds:     &rounds,
	}
	cfg, err := cmd.buildConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StartingStack != 5000 || cfg.MaxRounds != 42 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if len(cfg.Bots) != 2 || cfg.Bots[1].Strategy != "allin" {
		t.Errorf("bots = %+v", cfg.Bots)
	}
	if !cfg.RestrictedMode() {
		t.Error("restricted should default to true")
	}
}

func TestBuildConfigFlagsBeatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.hcl")
	src := `
seed = 1
bot "a" { strategy = "folder" }
bot "b" { strategy = "allin" }
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	seed := int64(99)
	restricted := false
	cmd := &RunCmd{Config: path, Seed: &seed, Restricted: &restricted}
	cfg, err := cmd.buildConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 99 {
		t.Errorf("seed = %d, want the flag to win", cfg.Seed)
	}
	if cfg.RestrictedMode() {
		t.Error("restricted flag should beat the file default")
	}
}

func TestBuildConfigRejectsTooFewSeats(t *testing.T) {
	cmd := &RunCmd{Seat: []string{"only=folder"}}
	if _, err := cmd.buildConfig(); err == nil {
		t.Fatal("one seat should not validate")
	}
}

// TestRunTournament plays a full unrestricted tournament through the
// command layer and checks the artifacts it leaves behind.
func TestRunTournament(t *testing.T) {
	dir := t.TempDir()
	restricted := false
	rounds := 500
	seed := int64(7)
	cmd := &RunCmd{
		Seat:       []string{"foldy=folder", "shovey=allin"},
		Restricted: &restricted,
		MaxRounds:  &rounds,
		Seed:       &seed,
		Output:     dir,
	}

	require.NoError(t, cmd.Run(log.New(io.Discard)))

	data, err := os.ReadFile(filepath.Join(dir, journal.ResultsFile))
	require.NoError(t, err)
	var result game.TournamentResult
	require.NoError(t, json.Unmarshal(data, &result))

	require.Equal(t, int64(7), result.Seed)
	require.GreaterOrEqual(t, result.Hands, 1)
	require.Len(t, result.Standings, 2)
	require.Equal(t, 1, result.Standings[0].Place)

	// Chips only move, they never appear or vanish.
	total := 0
	for _, s := range result.Standings {
		total += s.Stack
	}
	require.Equal(t, 2*config.DefaultStartingStack, total)

	// Neither strategy ever declares an illegal action, and neither
	// runs in a sandbox, so those journals stay empty.
	for _, name := range []string{journal.CorrectionsFile, journal.EventsFile} {
		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		require.Empty(t, content, "journal %s should be empty", name)
	}

	// Identical seed, identical tournament.
	dir2 := t.TempDir()
	cmd.Output = dir2
	require.NoError(t, cmd.Run(log.New(io.Discard)))
	data2, err := os.ReadFile(filepath.Join(dir2, journal.ResultsFile))
	require.NoError(t, err)
	var replay game.TournamentResult
	require.NoError(t, json.Unmarshal(data2, &replay))
	require.Equal(t, result.Hands, replay.Hands)
	require.Equal(t, result.Standings, replay.Standings)
}
