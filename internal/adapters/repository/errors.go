package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrStorage wraps every backend failure.
	ErrStorage = errors.New("submission store failure")
	// ErrUnsupportedURL is returned by Open for an unknown database url scheme.
	ErrUnsupportedURL = errors.New("unsupported database url")
)
