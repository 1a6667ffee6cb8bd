package scoring

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const utf8BOM = "\ufeff"

// Cell is one value of the scored column.
type Cell struct {
	Raw     string
	Value   float64
	Numeric bool
}

// ReadColumn reads a header-delimited CSV and returns the named column, one
// Cell per data row. Header names are matched after trimming whitespace and
// a leading byte order mark. Blank lines are skipped.
func ReadColumn(r io.Reader, column string) ([]Cell, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w %q: empty file", ErrMissingColumn, column)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedCSV, err)
	}

	idx := -1
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		if strings.TrimSpace(name) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, column)
	}

	var cells []Cell
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}
		// Short rows keep their position as a non-numeric cell.
		var raw string
		if idx < len(rec) {
			raw = rec[idx]
		}
		cells = append(cells, parseCell(raw))
	}
	return cells, nil
}

func parseCell(raw string) Cell {
	c := Cell{Raw: raw}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return c
	}
	c.Value = v
	c.Numeric = true
	return c
}
