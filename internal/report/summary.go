package report

import (
	"log/slog"
	"sort"

	"github.com/Veraticus/ifrec/internal/model"
)

// maxListedFailures caps how many failures a summary lists individually.
const maxListedFailures = 10

// Count is a name with how many results carried it.
type Count struct {
	Name  string
	Count int
}

// Summary condenses a set of validation results.
type Summary struct {
	ByStatus     []Count
	ByValidation []Count
	Failures     []model.ValidationResult
	Total        int
	FailedTotal  int
}

// Summarize tallies results by status and by validation name, both sorted by
// name, and keeps the first failures in result order.
func Summarize(results []model.ValidationResult) Summary {
	status := make(map[string]int)
	validation := make(map[string]int)
	s := Summary{Total: len(results)}

	for _, r := range results {
		status[string(r.Status)]++
		validation[r.ValidationName]++
		if r.Status == model.StatusFailed {
			s.FailedTotal++
			if len(s.Failures) < maxListedFailures {
				s.Failures = append(s.Failures, r)
			}
		}
	}

	s.ByStatus = sortedCounts(status)
	s.ByValidation = sortedCounts(validation)
	return s
}

// More returns how many failures were not listed.
func (s Summary) More() int {
	return s.FailedTotal - len(s.Failures)
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LogSummary writes the summary through slog.
func LogSummary(s Summary) {
	if s.Total == 0 {
		slog.Info("no validation results to summarize")
		return
	}

	slog.Info("data validation summary", "total", s.Total, "failed", s.FailedTotal)
	for _, c := range s.ByStatus {
		slog.Info("results by status", "status", c.Name, "count", c.Count)
	}
	for _, c := range s.ByValidation {
		slog.Info("results by validation", "validation", c.Name, "count", c.Count)
	}
	for _, f := range s.Failures {
		slog.Warn("validation failure",
			"file", f.FilePath,
			"validation", f.ValidationName,
			"details", f.Details)
	}
	if more := s.More(); more > 0 {
		slog.Warn("further failures not listed", "count", more)
	}
}
