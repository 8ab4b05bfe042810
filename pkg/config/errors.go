package config

import "errors"

var (
	// ErrParsingConfig wraps env parse failures (missing required vars, bad durations).
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	// ErrNilPointer is returned when Load receives a nil target.
	ErrNilPointer = errors.New("nil pointer provided to config loader")
)
