package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Browse runs the interactive run browser until the user quits or ctx is
// cancelled. Extra program options are appended to the defaults.
func Browse(ctx context.Context, source RunSource, limit int, opts ...tea.ProgramOption) error {
	if source == nil {
		return fmt.Errorf("run source is required")
	}

	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(New(ctx, source, limit), opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser failed: %w", err)
	}
	return nil
}
