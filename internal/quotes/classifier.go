package quotes

import (
	"fmt"
	"strings"

	"github.com/Veraticus/ifrec/internal/model"
)

// Outcome is the result of running one check against one file.
type Outcome struct {
	Details       string
	AffectedLines []int
	Check         Check
	Status        model.Status
}

// Classifier runs quote checks over whole files without modifying them.
type Classifier struct {
	codec *Codec
}

// NewClassifier creates a classifier reading files through codec.
func NewClassifier(codec *Codec) *Classifier {
	return &Classifier{codec: codec}
}

// Codec returns the codec used to read files.
func (c *Classifier) Codec() *Codec {
	return c.codec
}

// Check scans path and reports every data line the check flags. The header
// and blank lines are never flagged. A read or decode failure is returned
// as an error and must not be confused with a clean file.
func (c *Classifier) Check(path string, check Check) (Outcome, error) {
	content, err := c.codec.ReadFile(path)
	if err != nil {
		return Outcome{Check: check, Status: model.StatusFailed}, err
	}

	affected := Scan(content, check)
	return NewOutcome(check, affected), nil
}

// Scan returns the 1-indexed data lines of content that check flags.
func Scan(content string, check Check) []int {
	var affected []int
	for i, line := range strings.Split(content, "\n") {
		if !IsDataLine(i, line) {
			continue
		}
		if check.Detects(line) {
			affected = append(affected, i+1)
		}
	}
	return affected
}

// IsDataLine reports whether the line at zero-based index i is subject to
// checks: not the header and not blank.
func IsDataLine(i int, line string) bool {
	return i > 0 && strings.TrimSpace(line) != ""
}

// NewOutcome builds the outcome for a set of affected lines.
func NewOutcome(check Check, affected []int) Outcome {
	if len(affected) == 0 {
		return Outcome{
			Check:   check,
			Status:  model.StatusPassed,
			Details: fmt.Sprintf("No %s quotes detected", check.defect()),
		}
	}
	return Outcome{
		Check:         check,
		Status:        model.StatusFailed,
		AffectedLines: affected,
		Details:       fmt.Sprintf("Found %d lines with %s (%s) quotes", len(affected), check.defect(), check.parity()),
	}
}

func (c Check) defect() string {
	switch c {
	case RedundantQuotes:
		return "redundant"
	case MalformedQuotes:
		return "malformed"
	default:
		return "invalid"
	}
}

func (c Check) parity() string {
	switch c {
	case RedundantQuotes:
		return "odd"
	case MalformedQuotes:
		return "even"
	default:
		return "unbalanced"
	}
}
