package config

import "errors"

// Configuration errors returned by Load, Validate and WriteTemplate.
var (
	// ErrConfigNotFound is returned when an explicitly named configuration
	// file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrConfigExists is returned by WriteTemplate when the target exists
	// and overwriting was not requested.
	ErrConfigExists = errors.New("configuration file already exists: use --force to overwrite")

	// ErrInvalidBackend is returned for a vision backend name other than
	// native or gocv.
	ErrInvalidBackend = errors.New("invalid backend: must be native or gocv")

	// ErrInvalidConcurrency is returned when concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrEmptyDataDir is returned when no data directory is configured.
	ErrEmptyDataDir = errors.New("invalid data directory: must not be empty")
)
