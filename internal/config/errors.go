package config

import "errors"

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps file, env and decode failures.
	ErrLoadConfig = errors.New("load config failed")
	// ErrUnknownSource is returned for a data_source other than json or sqlite.
	ErrUnknownSource = errors.New("unknown data source")
)
