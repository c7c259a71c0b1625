// Package storage persists validation runs and their results.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/ifrec/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidRun   = errors.New("invalid run")
	ErrRunNotFound  = errors.New("run not found")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRun(run *model.Run) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	switch run.Kind {
	case model.RunKindRaw, model.RunKindTable:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRun, run.Kind)
	}
	if run.StartedAt.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidRun)
	}
	if run.FinishedAt.Before(run.StartedAt) {
		return fmt.Errorf("%w: finished before it started", ErrInvalidRun)
	}
	return nil
}
