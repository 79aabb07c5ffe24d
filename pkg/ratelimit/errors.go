package ratelimit

import "errors"

var (
	ErrInvalidLimit      = errors.New("invalid rate limit")
	ErrInvalidTokenCount = errors.New("invalid token count")
)
