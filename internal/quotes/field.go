package quotes

import "strings"

const (
	// Delimiter separates fields on a line.
	Delimiter = ";"
	quote     = '"'
)

// UnescapedQuotes counts the quote characters left in field after removing
// escaped "" pairs, scanning left to right without overlap.
func UnescapedQuotes(field string) int {
	if !strings.ContainsRune(field, quote) {
		return 0
	}
	return strings.Count(strings.ReplaceAll(field, `""`, ""), `"`)
}

// ClassifyLine returns the defect class of a data line. A field with an odd
// unescaped count makes the line Redundant regardless of other fields.
func ClassifyLine(line string) Class {
	if !strings.ContainsRune(line, quote) {
		return Clean
	}

	class := Clean
	for _, field := range strings.Split(line, Delimiter) {
		n := UnescapedQuotes(field)
		switch {
		case n%2 == 1:
			return Redundant
		case n > 0:
			class = Malformed
		}
	}
	return class
}

// Detects reports whether check flags line.
func (c Check) Detects(line string) bool {
	switch c {
	case RedundantQuotes:
		return lineHas(line, func(n int) bool { return n%2 == 1 })
	case MalformedQuotes:
		return lineHas(line, func(n int) bool { return n > 0 && n%2 == 0 })
	default:
		return false
	}
}

func lineHas(line string, match func(int) bool) bool {
	if !strings.ContainsRune(line, quote) {
		return false
	}
	for _, field := range strings.Split(line, Delimiter) {
		if match(UnescapedQuotes(field)) {
			return true
		}
	}
	return false
}

// RepairLine applies the check's field transform to every affected field
// on the line. Delimiters are never added or removed.
func (c Check) RepairLine(line string) string {
	if !strings.ContainsRune(line, quote) {
		return line
	}

	fields := strings.Split(line, Delimiter)
	for i, field := range fields {
		n := UnescapedQuotes(field)
		switch {
		case c == RedundantQuotes && n%2 == 1:
			fields[i] = rewriteQuotes(field, "")
		case c == MalformedQuotes && n > 0 && n%2 == 0:
			fields[i] = rewriteQuotes(field, `""`)
		}
	}
	return strings.Join(fields, Delimiter)
}

// rewriteQuotes replaces every single quote in field with repl while
// passing escaped pairs through unchanged.
func rewriteQuotes(field, repl string) string {
	var b strings.Builder
	b.Grow(len(field) + len(repl)*2)

	for i := 0; i < len(field); i++ {
		if field[i] != quote {
			b.WriteByte(field[i])
			continue
		}
		if i+1 < len(field) && field[i+1] == quote {
			b.WriteString(`""`)
			i++
			continue
		}
		b.WriteString(repl)
	}
	return b.String()
}
