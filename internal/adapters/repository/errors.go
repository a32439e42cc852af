package repository

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrInvalidRow    = errors.New("invalid dataset row")
	ErrEmptyDataset  = errors.New("dataset has no records")
	ErrNoDatasetPath = errors.New("dataset path is empty")
)
