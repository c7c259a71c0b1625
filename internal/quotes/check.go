// Package quotes classifies and repairs quote defects in semicolon-delimited
// regulatory CSV files.
package quotes

import (
	"errors"
	"fmt"
)

// ErrUnknownCheck is returned when a check name is not registered.
var ErrUnknownCheck = errors.New("unknown check")

// Check identifies one class of quote defect.
type Check int

// Checks in the order they must run. Removing odd quotes changes the counts
// the malformed check looks at, so RedundantQuotes always comes first.
const (
	RedundantQuotes Check = iota + 1
	MalformedQuotes
)

// Checks returns every check in canonical execution order.
func Checks() []Check {
	return []Check{RedundantQuotes, MalformedQuotes}
}

// ParseCheck maps a configured check name to its Check.
func ParseCheck(name string) (Check, error) {
	for _, c := range Checks() {
		if c.Name() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCheck, name)
}

// Name returns the configuration name of the check.
func (c Check) Name() string {
	switch c {
	case RedundantQuotes:
		return "check_redundant_quotes"
	case MalformedQuotes:
		return "check_malformed_quotes"
	default:
		return fmt.Sprintf("check(%d)", int(c))
	}
}

// FixName returns the name recorded on repairs made for the check.
func (c Check) FixName() string {
	switch c {
	case RedundantQuotes:
		return "fix_redundant_quotes"
	case MalformedQuotes:
		return "fix_malformed_quotes"
	default:
		return "fix_" + c.Name()
	}
}

// Action describes what the check's repair does, for fix details.
func (c Check) Action() string {
	switch c {
	case RedundantQuotes:
		return "Removed redundant quotes"
	case MalformedQuotes:
		return "Doubled malformed quotes"
	default:
		return "Repaired"
	}
}

// Repairable reports whether the check has an in-place repair. Checks
// without one fall back to line removal.
func (c Check) Repairable() bool {
	switch c {
	case RedundantQuotes, MalformedQuotes:
		return true
	default:
		return false
	}
}

func (c Check) String() string {
	return c.Name()
}

// Class is the quote classification of a single line.
type Class int

// Line classes.
const (
	Clean Class = iota
	Redundant
	Malformed
)

func (c Class) String() string {
	switch c {
	case Clean:
		return "clean"
	case Redundant:
		return "redundant_quotes"
	case Malformed:
		return "malformed_quotes"
	default:
		return "unknown"
	}
}
