package gesture

import "errors"

var (
	// ErrUnknownMode is returned for mode names outside the supported set.
	ErrUnknownMode = errors.New("unknown mode")
	// ErrInvalidTable is returned when a classification table is inconsistent.
	ErrInvalidTable = errors.New("invalid gesture table")
)
