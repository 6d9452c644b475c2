package reconciliation

import "errors"

var (
	// ErrToleranceOutOfRange is returned when tolerance percent is outside [0,100].
	ErrToleranceOutOfRange = errors.New("reconciliation: tolerance percent out of range")
	// ErrSummaryNotFound is returned when a summary id is unknown.
	ErrSummaryNotFound = errors.New("reconciliation: summary not found")
	// ErrNilSummary is returned when saving a nil summary.
	ErrNilSummary = errors.New("reconciliation: nil summary")
)
