// Package report renders validation results as CSV or XLSX reports and
// console summaries.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/ifrec/internal/model"
	"github.com/xuri/excelize/v2"
)

// Format is a report file format.
type Format string

// Supported report formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet holding raw validation rows in XLSX reports.
const SheetName = "validation"

// ErrUnknownFormat is returned for a report format other than csv or xlsx.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatXLSX:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Rows flattens results into report rows. Passed results are dropped unless
// includePassed is set.
func Rows(results []model.ValidationResult, includePassed bool) []model.ReportRow {
	rows := make([]model.ReportRow, 0, len(results))
	for _, r := range results {
		if !includePassed && r.Status == model.StatusPassed {
			continue
		}
		rows = append(rows, r.ReportRow())
	}
	if !includePassed {
		slog.Debug("filtered passed validations from report",
			"results", len(results),
			"reported", len(rows))
	}
	return rows
}

// WriteCSV writes rows with a header. The header is written even when there
// are no rows.
func WriteCSV(w io.Writer, rows []model.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.ReportColumns); err != nil {
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

// WriteXLSX writes rows to a workbook at path with a single sheet.
func WriteXLSX(path string, rows []model.ReportRow) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(model.ReportColumns))
	for i, c := range model.ReportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			row.Timestamp,
			row.DatasetName,
			row.ValidationName,
			row.Status,
			row.StrategyApplied,
			row.Details,
			row.AffectedLinesCount,
			row.AffectedLines,
			row.FixesApplied,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write report row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// FileName returns the report file name for a run started at ts.
func FileName(prefix string, ts time.Time, format Format) string {
	return fmt.Sprintf("%s_%s.%s", prefix, ts.Format("20060102_150405"), format)
}

// Save writes rows into dir in the given format and returns the file path.
func Save(dir string, ts time.Time, format Format, rows []model.ReportRow) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, FileName("validation_report", ts, format))

	switch format {
	case FormatXLSX:
		if err := WriteXLSX(path, rows); err != nil {
			return "", err
		}
	case FormatCSV:
		if err := writeCSVFile(path, func(w io.Writer) error { return WriteCSV(w, rows) }); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	slog.Info("validation report saved", "path", path, "rows", len(rows))
	return path, nil
}

func writeCSVFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path) //nolint:gosec // path is built from configured report dir
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report: %w", cerr)
		}
	}()
	return write(f)
}
