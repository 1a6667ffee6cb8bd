package scoring

import (
	"fmt"
	"math"
)

// RMSE returns sqrt(mean((actual[i]-predicted[i])^2)). Inputs of different
// length are rejected rather than truncated.
func RMSE(actual, predicted []float64) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, fmt.Errorf("%w (%d vs %d)", ErrLengthMismatch, len(predicted), len(actual))
	}
	if len(actual) == 0 {
		return 0, ErrEmpty
	}

	var sum float64
	for i, a := range actual {
		d := a - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual))), nil
}
