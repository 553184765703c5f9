package client

import "errors"

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRateLimited   = errors.New("rate limit exceeded")
	ErrServer        = errors.New("server error")
	ErrAlreadyExists = errors.New("already exists")
)
