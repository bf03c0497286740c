package services

import "errors"

// Scan service errors
var (
	// ErrEmptyBatch is returned when a batch carries no files.
	ErrEmptyBatch = errors.New("no files in batch")
	// ErrTooManyFiles is returned when a batch exceeds the configured
	// file count limit.
	ErrTooManyFiles = errors.New("too many files in batch")
)
