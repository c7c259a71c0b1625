package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedDirective is returned for a strftime directive with no Go
// layout equivalent.
var ErrUnsupportedDirective = errors.New("unsupported date directive")

var directives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'M': "04",
	'S': "05",
	'b': "Jan",
	'B': "January",
	'%': "%",
}

// Layout converts a strftime-style format such as "%Y-%m-%d" into a Go
// time layout.
func Layout(format string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("%w: trailing %%", ErrUnsupportedDirective)
		}
		i++
		layout, ok := directives[format[i]]
		if !ok {
			return "", fmt.Errorf("%w: %%%c", ErrUnsupportedDirective, format[i])
		}
		b.WriteString(layout)
	}
	return b.String(), nil
}

// IsDaily reports whether format carries a day-of-month directive.
func IsDaily(format string) bool {
	return strings.Contains(format, "%d")
}
