package flowarc

import "errors"

var (
	// ErrTooFewSegments is returned when an arc is requested with fewer
	// than two points.
	ErrTooFewSegments = errors.New("flowarc: arc needs at least 2 segments")

	// ErrStrideMismatch is returned when an arc added to a Batch does not
	// have the batch's segment count.
	ErrStrideMismatch = errors.New("flowarc: arc length does not match batch stride")

	// ErrInvalidHex is returned by ParseHex for malformed color strings.
	ErrInvalidHex = errors.New("flowarc: invalid hex color")
)
