package repair

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/Veraticus/ifrec/internal/model"
	"github.com/Veraticus/ifrec/internal/quotes"
)

// ValidateAndFix runs the requested checks on one file and applies each
// check's strategy. Checks always run redundant before malformed no matter
// how they were declared. Unknown check names are skipped with a warning.
// One result is returned per known check; nothing escapes as an error.
func (e *Engine) ValidateAndFix(path string, validations map[string]model.Strategy, dataset string) []model.ValidationResult {
	requested := make(map[quotes.Check]model.Strategy, len(validations))

	names := make([]string, 0, len(validations))
	for name := range validations {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		strategy := validations[name]
		check, err := quotes.ParseCheck(name)
		if err != nil {
			slog.Warn("unknown validation, skipping", "validation", name, "file", filepath.Base(path))
			continue
		}
		if !strategy.Valid() {
			slog.Warn("unknown strategy, skipping", "validation", name, "strategy", strategy)
			continue
		}
		requested[check] = strategy
	}

	results := make([]model.ValidationResult, 0, len(requested))
	for _, check := range quotes.Checks() {
		strategy, ok := requested[check]
		if !ok {
			continue
		}
		slog.Debug("running validation",
			"validation", check.Name(),
			"file", filepath.Base(path),
			"strategy", strategy)
		results = append(results, e.run(path, check, strategy, dataset))
	}
	return results
}

func (e *Engine) run(path string, check quotes.Check, strategy model.Strategy, dataset string) model.ValidationResult {
	result := model.ValidationResult{
		Timestamp:      e.now(),
		FilePath:       path,
		ValidationName: check.Name(),
		Strategy:       strategy,
		DatasetName:    dataset,
	}

	outcome, err := e.classifier.Check(path, check)
	if err != nil {
		result.Status = model.StatusFailed
		result.Details = fmt.Sprintf("Error reading file: %v", err)
		return result
	}
	if outcome.Status == model.StatusPassed {
		result.Status = model.StatusPassed
		result.Details = outcome.Details
		return result
	}

	fix, prefix := e.applyStrategy(path, check, strategy, outcome.AffectedLines)
	result.Details = prefix + fix.Details

	switch {
	case !fix.Success:
		result.Status = model.StatusFailed
		result.AffectedLines = outcome.AffectedLines
		slog.Warn("fix failed",
			"file", filepath.Base(path),
			"validation", check.Name(),
			"details", fix.Details)
	case fix.LinesFixed > 0:
		result.Status = model.StatusFixed
		result.AffectedLines = fix.Lines
		result.FixesApplied = fix.LinesFixed
		slog.Info("applied fixes",
			"file", filepath.Base(path),
			"validation", check.Name(),
			"strategy", strategy,
			"lines", fix.LinesFixed)
	default:
		result.Status = model.StatusPassed
	}
	return result
}

// applyStrategy runs the repair for strategy. A check without an in-place
// repair falls back to removing the affected lines; every current check has
// one, so the fallback only serves checks added later.
func (e *Engine) applyStrategy(path string, check quotes.Check, strategy model.Strategy, affected []int) (model.FixResult, string) {
	switch {
	case strategy == model.StrategyFix && check.Repairable():
		return e.Fix(path, check), ""
	case strategy == model.StrategyFix:
		slog.Warn("no fix method, falling back to ignore", "validation", check.Name())
		return e.Ignore(path, check, affected), "Fallback to IGNORE: "
	default:
		return e.Ignore(path, check, affected), ""
	}
}
