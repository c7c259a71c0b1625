package table

import (
	"fmt"
	"strings"

	"github.com/Veraticus/ifrec/internal/model"
	"github.com/shopspring/decimal"
)

// CheckBounds verifies that numeric cells of column lie within the inclusive
// bounds. A nil bound is open. Null cells are skipped; a cell that is not a
// number counts as out of bounds. Offending rows are reported with idColumn
// when one is given.
func CheckBounds(t *Table, dataset, column, idColumn string, lower, upper *decimal.Decimal) model.TableResult {
	if !t.Has(column) {
		return missingColumn(dataset, Bounds, column)
	}
	if idColumn != "" && !t.Has(idColumn) {
		return missingColumn(dataset, Bounds, idColumn)
	}
	if lower == nil && upper == nil {
		return passed(dataset, Bounds, "No bounds specified for validation")
	}

	var groups []map[string]string
	for i := range t.Rows {
		raw := t.Value(i, column)
		if raw == "" {
			continue
		}
		if inBounds(raw, lower, upper) {
			continue
		}
		row := map[string]string{column: raw}
		if idColumn != "" {
			row[idColumn] = t.Value(i, idColumn)
		}
		groups = append(groups, row)
	}

	if len(groups) == 0 {
		return passed(dataset, Bounds,
			fmt.Sprintf("All values in '%s' are within specified bounds", column))
	}

	var parts []string
	if lower != nil {
		parts = append(parts, "lower_bound="+lower.String())
	}
	if upper != nil {
		parts = append(parts, "upper_bound="+upper.String())
	}

	return failed(dataset, Bounds, len(groups),
		fmt.Sprintf("%d rows in '%s' are out of bounds (%s)", len(groups), column, strings.Join(parts, ", ")),
		groups)
}

func inBounds(raw string, lower, upper *decimal.Decimal) bool {
	v, err := ParseNumber(raw)
	if err != nil {
		return false
	}
	if lower != nil && v.LessThan(*lower) {
		return false
	}
	if upper != nil && v.GreaterThan(*upper) {
		return false
	}
	return true
}

// ParseNumber parses a decimal cell. A comma decimal separator is accepted
// when the cell has no dot.
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}
