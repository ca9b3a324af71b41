package telemetry

import "errors"

// Sentinel kinds for telemetry errors.
var (
	ErrNoData = errors.New("no telemetry for selection")
)
