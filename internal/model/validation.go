// Package model defines the core domain models used throughout the application.
package model

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Strategy is the action taken when a raw-file check fails.
type Strategy string

// Strategy constants.
const (
	// StrategyFix repairs the affected lines in place.
	StrategyFix Strategy = "fix"
	// StrategyIgnore removes the affected lines from the file.
	StrategyIgnore Strategy = "ignore"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyFix || s == StrategyIgnore
}

// Status is the outcome of one check on one file.
type Status string

// Status constants.
const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
	StatusFixed  Status = "fixed"
)

// ValidationResult is the record produced for one check run against one file.
type ValidationResult struct {
	Timestamp      time.Time
	FilePath       string
	ValidationName string
	Status         Status
	Strategy       Strategy
	DatasetName    string
	Details        string
	AffectedLines  []int
	FixesApplied   int
}

// ReportRow is the flattened form of a ValidationResult used by reports.
type ReportRow struct {
	Timestamp          string
	DatasetName        string
	ValidationName     string
	Status             string
	StrategyApplied    string
	Details            string
	AffectedLines      string
	AffectedLinesCount int
	FixesApplied       int
}

// ReportColumns lists the report columns in output order.
var ReportColumns = []string{
	"timestamp",
	"dataset_name",
	"validation_name",
	"status",
	"strategy_applied",
	"details",
	"affected_lines_count",
	"affected_lines",
	"fixes_applied",
}

// ReportRow flattens the result. The dataset name is qualified with the file
// name so rows from a multi-file dataset stay distinguishable.
func (r ValidationResult) ReportRow() ReportRow {
	name := filepath.Base(r.FilePath)
	if r.DatasetName != "" {
		name = r.DatasetName + "/" + name
	}

	return ReportRow{
		Timestamp:          r.Timestamp.Format(time.RFC3339),
		DatasetName:        name,
		ValidationName:     r.ValidationName,
		Status:             string(r.Status),
		StrategyApplied:    string(r.Strategy),
		Details:            r.Details,
		AffectedLinesCount: len(r.AffectedLines),
		AffectedLines:      JoinLines(r.AffectedLines),
		FixesApplied:       r.FixesApplied,
	}
}

// Values returns the row as strings in ReportColumns order.
func (r ReportRow) Values() []string {
	return []string{
		r.Timestamp,
		r.DatasetName,
		r.ValidationName,
		r.Status,
		r.StrategyApplied,
		r.Details,
		strconv.Itoa(r.AffectedLinesCount),
		r.AffectedLines,
		strconv.Itoa(r.FixesApplied),
	}
}

// FixResult is the outcome of applying a repair or line removal to a file.
type FixResult struct {
	Timestamp  time.Time
	FilePath   string
	FixName    string
	Details    string
	Lines      []int
	LinesFixed int
	Success    bool
}

// JoinLines renders line numbers as a comma-separated list.
func JoinLines(lines []int) string {
	if len(lines) == 0 {
		return ""
	}
	parts := make([]string, len(lines))
	for i, n := range lines {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// SplitLines parses a list produced by JoinLines.
func SplitLines(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	lines := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		lines = append(lines, n)
	}
	return lines, nil
}
