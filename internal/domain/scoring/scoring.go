// Package scoring computes the RMSE score of an uploaded prediction file
// against the reference answers.
package scoring

import (
	"context"
	"fmt"
	"io"
)

// DefaultColumn is the scored column of the abalone dataset.
const DefaultColumn = "Rings"

// Option applies a configuration option to the CSVScorer.
type Option func(*CSVScorer)

// WithColumn sets the scored column name.
func WithColumn(column string) Option {
	return func(s *CSVScorer) {
		if column != "" {
			s.column = column
		}
	}
}

// WithAlignment sets how non-numeric rows are dropped.
func WithAlignment(mode Alignment) Option {
	return func(s *CSVScorer) {
		s.alignment = mode
	}
}

// Result is the outcome of scoring one upload.
type Result struct {
	RMSE float64
	// Rows is the number of aligned numeric rows that contributed.
	Rows int
}

// Scorer scores a prediction file against a reference file.
type Scorer interface {
	Score(ctx context.Context, reference, predicted io.Reader) (Result, error)
}

// CSVScorer implements Scorer over header-delimited CSV input. It holds no
// mutable state and is safe for concurrent use.
type CSVScorer struct {
	column    string
	alignment Alignment
}

// NewCSVScorer creates a scorer for DefaultColumn with paired alignment.
func NewCSVScorer(opts ...Option) *CSVScorer {
	s := &CSVScorer{
		column:    DefaultColumn,
		alignment: AlignPaired,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Column returns the scored column name.
func (s *CSVScorer) Column() string { return s.column }

// Alignment returns the configured alignment mode.
func (s *CSVScorer) Alignment() Alignment { return s.alignment }

// Score parses both inputs, aligns them, and computes RMSE.
// Errors caused by the predicted input wrap ErrValidation; errors caused by
// the reference input wrap ErrReference.
func (s *CSVScorer) Score(ctx context.Context, reference, predicted io.Reader) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}

	ref, err := ReadColumn(reference, s.column)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrReference, err)
	}
	if len(ref) == 0 {
		return Result{}, fmt.Errorf("%w: no rows", ErrReference)
	}
	pred, err := ReadColumn(predicted, s.column)
	if err != nil {
		return Result{}, err
	}

	actual, values, err := Align(ref, pred, s.alignment)
	if err != nil {
		return Result{}, err
	}
	rmse, err := RMSE(actual, values)
	if err != nil {
		return Result{}, err
	}
	return Result{RMSE: rmse, Rows: len(actual)}, nil
}
