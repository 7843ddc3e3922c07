package booking

import "errors"

var (
	// ErrInvalidInterval is returned for a missing, empty or inverted time range.
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrConflict is returned when a requested room is already booked for an
	// overlapping interval.
	ErrConflict = errors.New("reservation conflict")
)
