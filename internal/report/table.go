package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Veraticus/ifrec/internal/model"
)

// TableRow is the flattened form of a table validation result.
type TableRow struct {
	Timestamp           string
	DatasetName         string
	ValidationName      string
	Status              string
	Details             string
	AffectedGroups      string
	ErrorCount          int
	AffectedGroupsCount int
}

// Values returns the row in model.TableColumns order.
func (r TableRow) Values() []string {
	return []string{
		r.Timestamp,
		r.DatasetName,
		r.ValidationName,
		r.Status,
		strconv.Itoa(r.ErrorCount),
		r.Details,
		strconv.Itoa(r.AffectedGroupsCount),
		r.AffectedGroups,
	}
}

// TableRows flattens table results, dropping passed ones unless
// includePassed is set. Affected groups are rendered as JSON.
func TableRows(results []model.TableResult, includePassed bool) ([]TableRow, error) {
	rows := make([]TableRow, 0, len(results))
	for _, r := range results {
		if r.Passed && !includePassed {
			continue
		}
		groups := ""
		if len(r.AffectedGroups) > 0 {
			b, err := json.Marshal(r.AffectedGroups)
			if err != nil {
				return nil, fmt.Errorf("failed to encode affected groups: %w", err)
			}
			groups = string(b)
		}
		rows = append(rows, TableRow{
			Timestamp:           r.Timestamp.Format(time.RFC3339),
			DatasetName:         r.DatasetName,
			ValidationName:      r.ValidationName,
			Status:              r.StatusString(),
			ErrorCount:          r.ErrorCount,
			Details:             r.Details,
			AffectedGroupsCount: len(r.AffectedGroups),
			AffectedGroups:      groups,
		})
	}
	return rows, nil
}

// WriteTableCSV writes table rows with a header.
func WriteTableCSV(w io.Writer, rows []TableRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.TableColumns); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveTable writes table rows as CSV into dir and returns the file path.
func SaveTable(dir string, ts time.Time, rows []TableRow) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, FileName("output_validation_report", ts, FormatCSV))
	if err := writeCSVFile(path, func(w io.Writer) error { return WriteTableCSV(w, rows) }); err != nil {
		return "", err
	}
	return path, nil
}
