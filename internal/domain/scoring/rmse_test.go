package scoring_test

import (
	"errors"
	"math"
	"testing"

	scoring "github.com/okian/abalone/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRMSE(t *testing.T) {
	Convey("Given two numeric sequences", t, func() {
		Convey("When they are identical", func() {
			for _, xs := range [][]float64{{1, 2, 3}, {7}, {-4.5, 0, 12.25, 9}} {
				got, err := scoring.RMSE(xs, xs)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, 0)
			}
		})

		Convey("When every prediction is off by one", func() {
			got, err := scoring.RMSE([]float64{0, 0, 0}, []float64{1, 1, 1})
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 1.0)

			got, err = scoring.RMSE([]float64{1, 2, 3}, []float64{2, 3, 4})
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 1.0)
		})

		Convey("When the errors differ per row", func() {
			// diffs 3 and 4: mean square 12.5
			got, err := scoring.RMSE([]float64{0, 0}, []float64{3, 4})
			So(err, ShouldBeNil)
			So(got, ShouldAlmostEqual, math.Sqrt(12.5), 1e-12)
		})

		Convey("When the arguments are swapped", func() {
			a, _ := scoring.RMSE([]float64{1, 5, 9}, []float64{2, 3, 10})
			b, _ := scoring.RMSE([]float64{2, 3, 10}, []float64{1, 5, 9})
			So(a, ShouldEqual, b)
		})

		Convey("When lengths differ", func() {
			_, err := scoring.RMSE([]float64{1, 2, 3}, []float64{1, 2})

			Convey("Then it fails instead of truncating", func() {
				So(errors.Is(err, scoring.ErrLengthMismatch), ShouldBeTrue)
				So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)
			})

			_, err = scoring.RMSE([]float64{1, 2}, []float64{1, 2, 3})
			So(errors.Is(err, scoring.ErrLengthMismatch), ShouldBeTrue)
		})

		Convey("When both are empty", func() {
			_, err := scoring.RMSE(nil, nil)
			So(errors.Is(err, scoring.ErrEmpty), ShouldBeTrue)
		})
	})
}
