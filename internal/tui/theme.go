package tui

import (
	"github.com/Veraticus/ifrec/internal/cli"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style of the run browser.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Error    lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Color
}

// Default is the default theme, built on the CLI palette.
var Default = Theme{
	Title:    cli.TitleStyle,
	Subtitle: cli.SubtleStyle,
	Error:    cli.ErrorStyle,
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")).
		Background(cli.PrimaryColor).
		Bold(true),
	Border: cli.SubtleColor,
}

func (t Theme) tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = t.Selected
	return s
}
