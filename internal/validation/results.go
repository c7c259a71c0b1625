package validation

import "github.com/Veraticus/ifrec/internal/model"

// Results accumulates validation records. It is a plain value: callers
// append to it and merge it, nothing holds it between runs.
type Results []model.ValidationResult

// Counts tallies results by status.
type Counts struct {
	Passed int
	Fixed  int
	Failed int
}

// Total returns the number of results counted.
func (c Counts) Total() int {
	return c.Passed + c.Fixed + c.Failed
}

// Append returns r with more results added.
func (r Results) Append(more ...model.ValidationResult) Results {
	return append(r, more...)
}

// Counts tallies r by status.
func (r Results) Counts() Counts {
	var c Counts
	for _, res := range r {
		switch res.Status {
		case model.StatusPassed:
			c.Passed++
		case model.StatusFixed:
			c.Fixed++
		case model.StatusFailed:
			c.Failed++
		}
	}
	return c
}

// Datasets returns dataset names in first-seen order.
func (r Results) Datasets() []string {
	seen := make(map[string]bool)
	var names []string
	for _, res := range r {
		if !seen[res.DatasetName] {
			seen[res.DatasetName] = true
			names = append(names, res.DatasetName)
		}
	}
	return names
}

// ForDataset returns the results belonging to one dataset.
func (r Results) ForDataset(name string) Results {
	var out Results
	for _, res := range r {
		if res.DatasetName == name {
			out = append(out, res)
		}
	}
	return out
}
