package model

import "time"

// RunKind distinguishes raw-file runs from table validation runs.
type RunKind string

// Run kinds.
const (
	RunKindRaw   RunKind = "raw"
	RunKindTable RunKind = "table"
)

// Run summarizes one invocation of the validators.
type Run struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ID         string
	Kind       RunKind
	Passed     int
	Fixed      int
	Failed     int
}
