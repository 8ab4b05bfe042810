package redis

import "errors"

var (
	ErrEmptyURL     = errors.New("redis: empty connection url")
	ErrParseURL     = errors.New("redis: invalid connection url")
	ErrNotReady     = errors.New("redis: server not ready before deadline")
	ErrUnhealthy    = errors.New("redis: ping failed")
	ErrStateExpired = errors.New("redis: state expiry is in the past")
)
