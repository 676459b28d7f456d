package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// version is set by ldflags during build.
var version = "dev"

type CLI struct {
	LogLevel string           `help:"Log level." enum:"debug,info,warn,error" default:"info"`
	NoColor  bool             `help:"Disable color output."`
	Version  kong.VersionFlag `short:"v" help:"Show version."`

	Run    RunCmd     `cmd:"" help:"Play a tournament."`
	Bots   BotsCmd    `cmd:"" help:"List the built-in strategies."`
	Bot    BotCmd     `cmd:"" help:"Serve a built-in strategy over the wire protocol on stdin/stdout."`
	Semver VersionCmd `cmd:"" name:"version" help:"Print the version."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("botfelt"),
		kong.Description("No-Limit Hold'em tournament engine for adversarial bots"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	)

	if cli.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	level, _ := log.ParseLevel(cli.LogLevel)
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	err := ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}

// VersionCmd prints the version, for scripts that prefer a command
// over a flag.
type VersionCmd struct{}

func (VersionCmd) Run() error {
	_, err := os.Stdout.WriteString(version + "\n")
	return err
}
