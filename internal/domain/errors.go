package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream error")
	ErrMissingBook  = errors.New("order book missing")
	ErrLockHeld     = errors.New("lock already held")
)
