package scoring

import "fmt"

// Alignment selects how non-numeric cells are dropped before scoring.
type Alignment int

const (
	// AlignPaired requires equal row counts and drops a row from both sides
	// when either cell is non-numeric, so rows never shift against each other.
	AlignPaired Alignment = iota
	// AlignIndependent drops non-numeric cells from each side on its own and
	// compares lengths afterwards. It reproduces scores computed by the
	// previous site and can silently misalign rows.
	AlignIndependent
)

func (a Alignment) String() string {
	switch a {
	case AlignPaired:
		return "paired"
	case AlignIndependent:
		return "independent"
	default:
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
}

// ParseAlignment maps a config value to an Alignment.
func ParseAlignment(s string) (Alignment, error) {
	switch s {
	case "", "paired":
		return AlignPaired, nil
	case "independent":
		return AlignIndependent, nil
	default:
		return 0, fmt.Errorf("unknown alignment %q", s)
	}
}

// Align turns the reference and predicted cells into equal-length value
// slices according to mode.
func Align(reference, predicted []Cell, mode Alignment) (actual, pred []float64, err error) {
	switch mode {
	case AlignIndependent:
		actual, pred = numeric(reference), numeric(predicted)
		if len(actual) != len(pred) {
			return nil, nil, fmt.Errorf("%w (%d vs %d numeric rows)", ErrLengthMismatch, len(pred), len(actual))
		}
		return actual, pred, nil
	case AlignPaired:
		if len(reference) != len(predicted) {
			return nil, nil, fmt.Errorf("%w (%d vs %d rows)", ErrLengthMismatch, len(predicted), len(reference))
		}
		actual = make([]float64, 0, len(reference))
		pred = make([]float64, 0, len(predicted))
		for i, ref := range reference {
			if !ref.Numeric || !predicted[i].Numeric {
				continue
			}
			actual = append(actual, ref.Value)
			pred = append(pred, predicted[i].Value)
		}
		return actual, pred, nil
	default:
		return nil, nil, fmt.Errorf("unknown alignment %v", mode)
	}
}

func numeric(cells []Cell) []float64 {
	out := make([]float64, 0, len(cells))
	for _, c := range cells {
		if c.Numeric {
			out = append(out, c.Value)
		}
	}
	return out
}
