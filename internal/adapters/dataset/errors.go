package dataset

import "errors"

// Sentinel kinds for dataset loading errors.
var (
	ErrMissingTable  = errors.New("required table file missing")
	ErrMissingColumn = errors.New("required column missing")
	ErrBadRow        = errors.New("malformed row")
)
