package cli

import (
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// Progress is a per-file progress bar. A nil *Progress is a no-op so callers
// can disable it without branching.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress creates a progress bar over total items written to w.
func NewProgress(w io.Writer, total int, description string) *Progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(w, "\n")
		}),
	)
	return &Progress{bar: bar}
}

// Step advances the bar by one. Safe for concurrent use.
func (p *Progress) Step() {
	if p == nil {
		return
	}
	if err := p.bar.Add(1); err != nil {
		slog.Debug("Failed to update progress bar", "error", err)
	}
}

// Finish completes the bar.
func (p *Progress) Finish() {
	if p == nil {
		return
	}
	if err := p.bar.Finish(); err != nil {
		slog.Debug("Failed to finish progress bar", "error", err)
	}
}
