package scoring

import (
	"errors"
	"fmt"
)

// ErrValidation is the umbrella kind for submissions that cannot be scored
// because of their content. Every error below wraps it.
var ErrValidation = errors.New("submission validation failed")

// Sentinel kinds for scoring errors.
var (
	ErrLengthMismatch = fmt.Errorf("%w: the uploaded CSV and the correct output must have the same number of rows", ErrValidation)
	ErrEmpty          = fmt.Errorf("%w: no numeric rows to score", ErrValidation)
	ErrMissingColumn  = fmt.Errorf("%w: missing column", ErrValidation)
	ErrMalformedCSV   = fmt.Errorf("%w: malformed csv", ErrValidation)
)

// ErrReference marks failures reading the reference answers. It does not
// wrap ErrValidation: a broken reference file is a server fault.
var ErrReference = errors.New("reference dataset unavailable")
