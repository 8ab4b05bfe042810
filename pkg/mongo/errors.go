package mongo

import "errors"

var (
	// ErrConnect means no ping succeeded within the retry budget.
	ErrConnect   = errors.New("mongo: failed to connect")
	ErrUnhealthy = errors.New("mongo: primary did not answer ping")
)
