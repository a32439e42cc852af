package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrNotFound       = errors.New("player not found")
	ErrInvalidRequest = errors.New("invalid request")
)
