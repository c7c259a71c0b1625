// Package tui provides an interactive browser for recorded validation runs.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Veraticus/ifrec/internal/model"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// RunSource is the read side of the audit store.
type RunSource interface {
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	GetRunResults(ctx context.Context, runID string) ([]model.ValidationResult, error)
	GetTableResults(ctx context.Context, runID string) ([]model.TableResult, error)
}

type view int

const (
	viewRuns view = iota
	viewResults
)

const defaultTableHeight = 15

// Model is the bubbletea model of the run browser.
type Model struct {
	ctx      context.Context
	source   RunSource
	err      error
	theme    Theme
	keys     KeyMap
	help     help.Model
	current  model.Run
	runs     []model.Run
	runTable table.Model
	detail   table.Model
	limit    int
	view     view
	width    int
	height   int
	loading  bool
}

// New creates a browser listing at most limit runs from source.
func New(ctx context.Context, source RunSource, limit int) Model {
	theme := Default
	return Model{
		ctx:      ctx,
		source:   source,
		theme:    theme,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		limit:    limit,
		loading:  true,
		runTable: newTable(runColumns(), nil, theme),
		width:    80,
		height:   24,
	}
}

// Init starts loading the run list.
func (m Model) Init() tea.Cmd {
	return m.loadRuns()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h := max(msg.Height-6, 3)
		m.runTable.SetHeight(h)
		m.detail.SetHeight(h)
		return m, nil

	case runsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.runs = msg.runs
			m.runTable.SetRows(runRows(msg.runs))
		}
		return m, nil

	case resultsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.current = msg.run
		if msg.run.Kind == model.RunKindTable {
			m.detail = newTable(tableColumns(), tableRows(msg.tables), m.theme)
		} else {
			m.detail = newTable(resultColumns(), resultRows(msg.results), m.theme)
		}
		m.view = viewResults
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Back):
			if m.view == viewResults {
				m.view = viewRuns
				m.err = nil
			}
			return m, nil
		case key.Matches(msg, m.keys.Reload):
			if m.view == viewRuns {
				m.loading = true
				return m, m.loadRuns()
			}
			return m, nil
		case key.Matches(msg, m.keys.Select):
			if m.view == viewRuns && len(m.runs) > 0 {
				m.loading = true
				return m, m.loadResults(m.runs[m.runTable.Cursor()])
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.view == viewResults {
		m.detail, cmd = m.detail.Update(msg)
	} else {
		m.runTable, cmd = m.runTable.Update(msg)
	}
	return m, cmd
}

func (m Model) loadRuns() tea.Cmd {
	ctx, source, limit := m.ctx, m.source, m.limit
	return func() tea.Msg {
		runs, err := source.ListRuns(ctx, limit)
		if err != nil {
			return runsLoadedMsg{err: fmt.Errorf("failed to list runs: %w", err)}
		}
		return runsLoadedMsg{runs: runs}
	}
}

func (m Model) loadResults(run model.Run) tea.Cmd {
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		msg := resultsLoadedMsg{run: run}
		if run.Kind == model.RunKindTable {
			msg.tables, msg.err = source.GetTableResults(ctx, run.ID)
		} else {
			msg.results, msg.err = source.GetRunResults(ctx, run.ID)
		}
		if msg.err != nil {
			msg.err = fmt.Errorf("failed to load run %s: %w", run.ID, msg.err)
		}
		return msg
	}
}

func newTable(columns []table.Column, rows []table.Row, theme Theme) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
	)
	t.SetStyles(theme.tableStyles())
	return t
}

func runColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 36},
		{Title: "Kind", Width: 6},
		{Title: "Started", Width: 19},
		{Title: "Duration", Width: 10},
		{Title: "Passed", Width: 7},
		{Title: "Fixed", Width: 7},
		{Title: "Failed", Width: 7},
	}
}

func runRows(runs []model.Run) []table.Row {
	rows := make([]table.Row, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, table.Row{
			r.ID,
			string(r.Kind),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).Round(10 * time.Millisecond).String(),
			strconv.Itoa(r.Passed),
			strconv.Itoa(r.Fixed),
			strconv.Itoa(r.Failed),
		})
	}
	return rows
}

func resultColumns() []table.Column {
	return []table.Column{
		{Title: "Dataset", Width: 30},
		{Title: "Validation", Width: 22},
		{Title: "Status", Width: 8},
		{Title: "Lines", Width: 6},
		{Title: "Fixes", Width: 6},
		{Title: "Details", Width: 50},
	}
}

func resultRows(results []model.ValidationResult) []table.Row {
	rows := make([]table.Row, 0, len(results))
	for _, r := range results {
		row := r.ReportRow()
		rows = append(rows, table.Row{
			row.DatasetName,
			row.ValidationName,
			row.Status,
			strconv.Itoa(row.AffectedLinesCount),
			strconv.Itoa(row.FixesApplied),
			row.Details,
		})
	}
	return rows
}

func tableColumns() []table.Column {
	return []table.Column{
		{Title: "Dataset", Width: 20},
		{Title: "Validation", Width: 22},
		{Title: "Status", Width: 8},
		{Title: "Errors", Width: 7},
		{Title: "Details", Width: 60},
	}
}

func tableRows(results []model.TableResult) []table.Row {
	rows := make([]table.Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, table.Row{
			r.DatasetName,
			r.ValidationName,
			r.StatusString(),
			strconv.Itoa(r.ErrorCount),
			r.Details,
		})
	}
	return rows
}
