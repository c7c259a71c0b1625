package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/ifrec/internal/report"
)

// RenderSummary renders a validation summary box.
func RenderSummary(s report.Summary) string {
	if s.Total == 0 {
		return FormatInfo("No validation results to summarize")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total validations run: %d\n\n", s.Total)

	b.WriteString("Results by status:\n")
	for _, c := range s.ByStatus {
		fmt.Fprintf(&b, "  • %s: %d\n", c.Name, c.Count)
	}

	b.WriteString("\nResults by validation type:\n")
	for _, c := range s.ByValidation {
		fmt.Fprintf(&b, "  • %s: %d\n", c.Name, c.Count)
	}

	if s.FailedTotal == 0 {
		b.WriteString("\n" + FormatSuccess("No failures detected"))
	} else {
		b.WriteString("\n" + ErrorStyle.Render(fmt.Sprintf("Failures (%d):", s.FailedTotal)) + "\n")
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "  %s %s\n", ErrorIcon, f.FilePath)
			fmt.Fprintf(&b, "    Validation: %s\n", f.ValidationName)
			fmt.Fprintf(&b, "    Details: %s\n", f.Details)
		}
		if more := s.More(); more > 0 {
			fmt.Fprintf(&b, "  ... and %d more", more)
		}
	}

	return RenderBox("Data Validation Summary", strings.TrimRight(b.String(), "\n"))
}
