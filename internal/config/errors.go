package config

import (
	"errors"
)

// Sentinel kinds for pipeline configuration failures, matchable with
// errors.Is from callers. ErrLoadConfig covers the file/env layering
// itself; ErrInvalidConfig covers values the pipeline cannot run with.
var (
	ErrInvalidConfig = errors.New("invalid pipeline config")
	ErrLoadConfig    = errors.New("load pipeline config failed")
)
