package table

import (
	"fmt"
	"strings"

	"github.com/Veraticus/ifrec/internal/model"
)

// CheckUniqueness verifies that the combination of columns is unique across
// rows. Each duplicated combination is reported once, in order of first
// appearance.
func CheckUniqueness(t *Table, dataset string, columns []string) model.TableResult {
	if len(columns) == 0 || !t.Has(columns...) {
		return failed(dataset, Uniqueness, 1,
			fmt.Sprintf("Not all columns in [%s] found", strings.Join(columns, ", ")), nil)
	}

	counts := make(map[string]int)
	var order []string
	first := make(map[string]int)
	for i := range t.Rows {
		key := rowKey(t, i, columns)
		if counts[key] == 0 {
			order = append(order, key)
			first[key] = i
		}
		counts[key]++
	}

	var groups []map[string]string
	for _, key := range order {
		if counts[key] < 2 {
			continue
		}
		g := make(map[string]string, len(columns))
		for _, c := range columns {
			g[c] = t.Value(first[key], c)
		}
		groups = append(groups, g)
	}

	if len(groups) == 0 {
		return passed(dataset, Uniqueness, "All values in group are unique")
	}
	return failed(dataset, Uniqueness, len(groups),
		fmt.Sprintf("%d groups are not unique", len(groups)), groups)
}

func rowKey(t *Table, i int, columns []string) string {
	parts := make([]string, len(columns))
	for j, c := range columns {
		parts[j] = t.Value(i, c)
	}
	return strings.Join(parts, "\x00")
}
