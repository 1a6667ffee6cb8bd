package service

import "errors"

// Sentinel kinds for rejected submissions. All of them are client errors and
// are returned before the store is written.
var (
	ErrMissingFields  = errors.New("missing fields")
	ErrWrongFormat    = errors.New("only .csv files are allowed")
	ErrTooManyMembers = errors.New("too many team members")
	ErrRateLimited    = errors.New("daily submission limit reached")
)
