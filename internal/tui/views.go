package tui

import (
	"fmt"
	"strings"
)

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder

	switch m.view {
	case viewResults:
		b.WriteString(m.theme.Title.Render("Run " + m.current.ID))
		b.WriteString("\n")
		b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("%s run started %s  passed %d  fixed %d  failed %d",
			m.current.Kind,
			m.current.StartedAt.Local().Format("2006-01-02 15:04:05"),
			m.current.Passed, m.current.Fixed, m.current.Failed)))
	default:
		b.WriteString(m.theme.Title.Render("Validation Runs"))
		b.WriteString("\n")
		b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("%d runs", len(m.runs))))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(m.theme.Error.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	switch {
	case m.loading:
		b.WriteString("Loading...\n")
	case m.view == viewResults:
		b.WriteString(m.detail.View())
		b.WriteString("\n")
	case len(m.runs) == 0:
		b.WriteString("No runs recorded yet.\n")
	default:
		b.WriteString(m.runTable.View())
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}
