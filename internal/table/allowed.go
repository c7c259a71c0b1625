package table

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/Veraticus/ifrec/internal/model"
)

// CheckAllowedValues verifies that every non-null cell of column is one of
// allowed. Disallowed values are reported with their counts, most frequent
// first.
func CheckAllowedValues(t *Table, dataset, column string, allowed []string) model.TableResult {
	if !t.Has(column) {
		return missingColumn(dataset, AllowedValues, column)
	}

	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ok[a] = true
	}

	counts := make(map[string]int)
	bad := 0
	for i := range t.Rows {
		v := t.Value(i, column)
		if v == "" || ok[v] {
			continue
		}
		counts[v]++
		bad++
	}

	if bad == 0 {
		return passed(dataset, AllowedValues,
			fmt.Sprintf("All values in '%s' are among allowed values", column))
	}

	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})

	groups := make([]map[string]string, len(values))
	for i, v := range values {
		groups[i] = map[string]string{column: v, "count": strconv.Itoa(counts[v])}
	}

	return failed(dataset, AllowedValues, bad,
		fmt.Sprintf("%d rows with disallowed values", bad), groups)
}
