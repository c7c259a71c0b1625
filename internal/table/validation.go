package table

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/ifrec/internal/model"
)

// ErrUnknownValidation is returned for a table validation name that is not
// one of the known validations.
var ErrUnknownValidation = errors.New("unknown table validation")

// Validation identifies a table validation.
type Validation int

// Table validations.
const (
	AllowedValues Validation = iota + 1
	Bounds
	Uniqueness
	TimeCompleteness
)

var validationNames = map[Validation]string{
	AllowedValues:    "validate_allowed_values",
	Bounds:           "validate_bounds",
	Uniqueness:       "validate_uniqueness",
	TimeCompleteness: "validate_time_completeness",
}

// Name returns the configuration name of v.
func (v Validation) Name() string {
	if name, ok := validationNames[v]; ok {
		return name
	}
	return fmt.Sprintf("validation(%d)", int(v))
}

// ParseValidation resolves a configuration name.
func ParseValidation(name string) (Validation, error) {
	for v, n := range validationNames {
		if n == name {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownValidation, name)
}

// now is replaced in tests.
var now = time.Now

func passed(dataset string, v Validation, details string) model.TableResult {
	return model.TableResult{
		Timestamp:      now(),
		DatasetName:    dataset,
		ValidationName: v.Name(),
		Passed:         true,
		Details:        details,
	}
}

func failed(dataset string, v Validation, count int, details string, groups []map[string]string) model.TableResult {
	return model.TableResult{
		Timestamp:      now(),
		DatasetName:    dataset,
		ValidationName: v.Name(),
		ErrorCount:     count,
		Details:        details,
		AffectedGroups: groups,
	}
}

func missingColumn(dataset string, v Validation, column string) model.TableResult {
	return failed(dataset, v, 1, fmt.Sprintf("Column '%s' not found", column), nil)
}
