package trips

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("trips: missing column")

	// ErrEmpty is returned when the input has no header row.
	ErrEmpty = errors.New("trips: empty input")
)

// RowError describes a rejected data row.
type RowError struct {
	// Line is the 1-based line number in the input.
	Line int
	// Column is the header name of the offending field, if known.
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("trips: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("trips: line %d: column %q: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
