package table

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/Veraticus/ifrec/internal/model"
)

// monthlyLayout parses the default YYYYMM time values once "01" is appended.
const monthlyLayout = "20060102"

type span struct {
	seen  map[time.Time]bool
	first time.Time
	last  time.Time
}

func (s *span) add(d time.Time) {
	if len(s.seen) == 0 || d.Before(s.first) {
		s.first = d
	}
	if len(s.seen) == 0 || d.After(s.last) {
		s.last = d
	}
	s.seen[d] = true
}

// CheckTimeCompleteness looks for gaps in each group's time series between
// its first and last period. With a dateFormat containing %d the series is
// daily and the expected days are the distinct dates present anywhere in the
// table within the group's range. Otherwise it is monthly and every month
// between first and last is expected. Without dateFormat values are YYYYMM.
func CheckTimeCompleteness(t *Table, dataset, timeColumn, groupColumn, dateFormat string) model.TableResult {
	if !t.Has(timeColumn) {
		return missingColumn(dataset, TimeCompleteness, timeColumn)
	}
	if !t.Has(groupColumn) {
		return missingColumn(dataset, TimeCompleteness, groupColumn)
	}

	layout, suffix := monthlyLayout, "01"
	if dateFormat != "" {
		var err error
		if layout, err = Layout(dateFormat); err != nil {
			return failed(dataset, TimeCompleteness, 1, err.Error(), nil)
		}
		suffix = ""
	}
	daily := IsDaily(dateFormat)

	groups := make(map[string]*span)
	var order []string
	allDays := make(map[time.Time]bool)

	for i := range t.Rows {
		raw := t.Value(i, timeColumn)
		if raw == "" {
			continue
		}
		d, err := time.Parse(layout, raw+suffix)
		if err != nil {
			return failed(dataset, TimeCompleteness, 1,
				fmt.Sprintf("Cannot parse '%s' in column '%s'", raw, timeColumn), nil)
		}
		if !daily {
			d = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		}

		g := t.Value(i, groupColumn)
		s, ok := groups[g]
		if !ok {
			s = &span{seen: make(map[time.Time]bool)}
			groups[g] = s
			order = append(order, g)
		}
		s.add(d)
		allDays[d] = true
	}

	var days []time.Time
	if daily {
		for d := range allDays {
			days = append(days, d)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	}

	unit := "months"
	if daily {
		unit = "trading days"
	}

	var affected []map[string]string
	totalMissing := 0
	for _, g := range order {
		s := groups[g]
		expected := monthsBetween(s.first, s.last)
		if daily {
			expected = daysWithin(days, s.first, s.last)
		}
		missing := expected - len(s.seen)
		if missing <= 0 {
			continue
		}
		totalMissing += missing
		affected = append(affected, map[string]string{
			groupColumn: g,
			"expected":  strconv.Itoa(expected),
			"actual":    strconv.Itoa(len(s.seen)),
			"missing":   strconv.Itoa(missing),
		})
	}

	if len(affected) == 0 {
		granularity := "monthly"
		if daily {
			granularity = "daily"
		}
		return passed(dataset, TimeCompleteness,
			fmt.Sprintf("All groups have complete %s time series", granularity))
	}

	return failed(dataset, TimeCompleteness, totalMissing,
		fmt.Sprintf("%d groups have gaps (%d missing %s)", len(affected), totalMissing, unit),
		affected)
}

func monthsBetween(first, last time.Time) int {
	return (last.Year()*12 + int(last.Month())) - (first.Year()*12 + int(first.Month())) + 1
}

func daysWithin(days []time.Time, first, last time.Time) int {
	lo := sort.Search(len(days), func(i int) bool { return !days[i].Before(first) })
	hi := sort.Search(len(days), func(i int) bool { return days[i].After(last) })
	return hi - lo
}
