package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/botfelt/botfelt/internal/game"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#1B7F4C")).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	winnerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	bustedStyle = lipgloss.NewStyle().Faint(true)
	nameStyle   = lipgloss.NewStyle().Bold(true)
)

// renderStandings formats the final table for the terminal: winner
// highlighted, busted seats dimmed with the hand that felled them.
func renderStandings(result *game.TournamentResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" botfelt standings "))
	b.WriteString("\n\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%5s  %-20s %10s  %s", "PLACE", "PLAYER", "STACK", "BUSTED")))
	b.WriteByte('\n')

	for _, s := range result.Standings {
		busted := "-"
		if s.BustedHand > 0 {
			busted = fmt.Sprintf("hand %d", s.BustedHand)
		}
		line := fmt.Sprintf("%5d  %-20s %10d  %s", s.Place, s.Name, s.Stack, busted)
		switch {
		case s.Place == 1 && s.Stack > 0:
			line = winnerStyle.Render(line)
		case s.Stack == 0:
			line = bustedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\nhands %d, seed %d, run %s\n", result.Hands, result.Seed, result.ID)
	return b.String()
}
