package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrUnknownPosition = errors.New("unknown position")
	ErrUnknownStat     = errors.New("unknown stat")
	ErrKindMismatch    = errors.New("kind mismatch")
)
