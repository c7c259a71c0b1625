package table

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Veraticus/ifrec/internal/model"
	"github.com/Veraticus/ifrec/internal/quotes"
	"github.com/shopspring/decimal"
)

// Run applies each configured check to t. Unknown check names are logged and
// skipped.
func Run(t *Table, dataset string, checks []model.TableCheckConfig) []model.TableResult {
	results := make([]model.TableResult, 0, len(checks))
	for _, check := range checks {
		v, err := ParseValidation(check.Name)
		if err != nil {
			slog.Warn("unknown table validation, skipping",
				"dataset", dataset,
				"validation", check.Name)
			continue
		}
		results = append(results, runOne(t, dataset, v, check))
	}
	return results
}

func runOne(t *Table, dataset string, v Validation, check model.TableCheckConfig) model.TableResult {
	switch v {
	case AllowedValues:
		return CheckAllowedValues(t, dataset, check.Column, check.Allowed)
	case Bounds:
		lower, err := parseBound(check.Lower)
		if err != nil {
			return failed(dataset, Bounds, 1, fmt.Sprintf("Invalid lower bound: %v", err), nil)
		}
		upper, err := parseBound(check.Upper)
		if err != nil {
			return failed(dataset, Bounds, 1, fmt.Sprintf("Invalid upper bound: %v", err), nil)
		}
		return CheckBounds(t, dataset, check.Column, check.IdentifierColumn, lower, upper)
	case Uniqueness:
		return CheckUniqueness(t, dataset, check.Columns)
	case TimeCompleteness:
		return CheckTimeCompleteness(t, dataset, check.TimeColumn, check.GroupColumn, check.DateFormat)
	default:
		return failed(dataset, v, 1, ErrUnknownValidation.Error(), nil)
	}
}

func parseBound(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := ParseNumber(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// RunAll loads every configured dataset and runs its checks, datasets in name
// order. A dataset that cannot be loaded yields one failed result.
func RunAll(cfg model.TableValidationConfig, codec *quotes.Codec) []model.TableResult {
	names := make([]string, 0, len(cfg.Datasets))
	for name := range cfg.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []model.TableResult
	for _, name := range names {
		ds := cfg.Datasets[name]
		t, err := Load(ds.Path, codec)
		if err != nil {
			slog.Error("failed to load table", "dataset", name, "path", ds.Path, "error", err)
			results = append(results, model.TableResult{
				Timestamp:      now(),
				DatasetName:    name,
				ValidationName: "load",
				ErrorCount:     1,
				Details:        fmt.Sprintf("Error loading table: %v", err),
			})
			continue
		}

		dsResults := Run(t, name, ds.Checks)
		failedCount := 0
		for _, r := range dsResults {
			if !r.Passed {
				failedCount++
			}
		}
		slog.Info("table validation summary",
			"dataset", name,
			"rows", t.Len(),
			"passed", len(dsResults)-failedCount,
			"failed", failedCount)
		results = append(results, dsResults...)
	}
	return results
}
