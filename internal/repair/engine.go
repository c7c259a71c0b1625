// Package repair fixes quote defects found by the classifier. Every
// mutation is preceded by a backup and followed by a sanity check that rolls
// the file back when too many lines disappeared.
package repair

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/ifrec/internal/model"
	"github.com/Veraticus/ifrec/internal/quotes"
)

// DefaultMinRetained is the fraction of lines a repaired file must keep.
const DefaultMinRetained = 0.5

// BackupStore creates and restores pre-repair copies of files.
type BackupStore interface {
	Backup(file string) (string, error)
	Restore(backupPath, originalPath string) error
}

// Engine applies repairs guarded by backup and sanity verification.
type Engine struct {
	classifier  *quotes.Classifier
	backups     BackupStore
	now         func() time.Time
	minRetained float64
}

// NewEngine creates a repair engine.
func NewEngine(classifier *quotes.Classifier, backups BackupStore) *Engine {
	return &Engine{
		classifier:  classifier,
		backups:     backups,
		now:         time.Now,
		minRetained: DefaultMinRetained,
	}
}

// Fix repairs every line the check flags. A file without defects is left
// alone and no backup is taken.
func (e *Engine) Fix(path string, check quotes.Check) model.FixResult {
	result := e.newFixResult(path, check.FixName())

	content, err := e.classifier.Codec().ReadFile(path)
	if err != nil {
		result.Details = fmt.Sprintf("Error reading file: %v", err)
		return result
	}

	if len(quotes.Scan(content, check)) == 0 {
		slog.Info("no issues found, skipping backup and fix",
			"file", filepath.Base(path),
			"check", check.Name())
		result.Success = true
		result.Details = "No issues found, file not modified"
		return result
	}

	return e.apply(path, content, result, "Fix", func(lines []string) ([]string, []int) {
		return repairLines(lines, check)
	}, func(n int) string {
		return fmt.Sprintf("%s in %d lines", check.Action(), n)
	})
}

// Ignore deletes the given 1-indexed lines. The header and blank lines are
// never removed even when listed.
func (e *Engine) Ignore(path string, check quotes.Check, affected []int) model.FixResult {
	result := e.newFixResult(path, "ignore_"+check.Name())

	if len(affected) == 0 {
		result.Success = true
		result.Details = "No lines to remove"
		return result
	}

	content, err := e.classifier.Codec().ReadFile(path)
	if err != nil {
		result.Details = fmt.Sprintf("Error reading file: %v", err)
		return result
	}

	drop := make(map[int]bool, len(affected))
	for _, n := range affected {
		drop[n] = true
	}

	return e.apply(path, content, result, "IGNORE", func(lines []string) ([]string, []int) {
		return removeLines(path, lines, drop)
	}, func(n int) string {
		return fmt.Sprintf("Removed %d lines", n)
	})
}

// apply backs the file up, rewrites it, and verifies the result. Nothing is
// written when the backup cannot be taken.
func (e *Engine) apply(
	path, content string,
	result model.FixResult,
	label string,
	transform func([]string) ([]string, []int),
	describe func(int) string,
) model.FixResult {
	backupPath, err := e.backups.Backup(path)
	if err != nil {
		slog.Error("failed to create backup", "file", filepath.Base(path), "error", err)
		result.Details = fmt.Sprintf("Backup failed: %v", err)
		return result
	}
	slog.Info("backed up file before modification",
		"file", filepath.Base(path),
		"backup", backupPath,
		"fix", result.FixName)

	body, trailing := splitContent(content)
	lines, changed := transform(body)

	if err := e.classifier.Codec().WriteFile(path, joinContent(lines, trailing)); err != nil {
		result.Details = fmt.Sprintf("Error writing file: %v", err)
		return result
	}

	result.Success = true
	result.LinesFixed = len(changed)
	result.Lines = changed
	result.Details = describe(len(changed))

	ok, msg := e.sanityCheck(path, backupPath)
	if ok {
		return result
	}

	slog.Error("sanity check failed, restoring from backup",
		"file", filepath.Base(path),
		"reason", msg)
	result.Success = false
	result.Details = fmt.Sprintf("%s reverted - %s", label, msg)
	if err := e.backups.Restore(backupPath, path); err != nil {
		slog.Error("failed to restore file after sanity failure", "file", path, "error", err)
		result.Details = fmt.Sprintf("%s; restore failed: %v", result.Details, err)
	}
	return result
}

func (e *Engine) newFixResult(path, name string) model.FixResult {
	return model.FixResult{
		FilePath:  path,
		FixName:   name,
		Timestamp: e.now(),
	}
}

// splitContent breaks content into lines, reporting whether it ended with a
// newline. Line endings other than \n stay attached to their line.
func splitContent(content string) ([]string, bool) {
	if content == "" {
		return nil, false
	}
	trailing := strings.HasSuffix(content, "\n")
	if trailing {
		content = content[:len(content)-1]
	}
	return strings.Split(content, "\n"), trailing
}

func joinContent(lines []string, trailing bool) string {
	out := strings.Join(lines, "\n")
	if trailing {
		out += "\n"
	}
	return out
}

func repairLines(lines []string, check quotes.Check) ([]string, []int) {
	var changed []int
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line
		if !quotes.IsDataLine(i, line) {
			continue
		}
		if fixed := check.RepairLine(line); fixed != line {
			out[i] = fixed
			changed = append(changed, i+1)
		}
	}
	return out, changed
}

func removeLines(path string, lines []string, drop map[int]bool) ([]string, []int) {
	var removed []int
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		n := i + 1
		if quotes.IsDataLine(i, line) && drop[n] {
			slog.Debug("removing line", "file", filepath.Base(path), "line", n, "content", truncate(line, 80))
			removed = append(removed, n)
			continue
		}
		out = append(out, line)
	}
	return out, removed
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
