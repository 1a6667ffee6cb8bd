package scoring_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	scoring "github.com/okian/abalone/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

const reference = "id,Rings\n1,9\n2,10\n3,7\n"

func TestCSVScorer_Score(t *testing.T) {
	Convey("Given a scorer with default options", t, func() {
		scorer := scoring.NewCSVScorer()
		ctx := context.Background()

		So(scorer.Column(), ShouldEqual, "Rings")
		So(scorer.Alignment(), ShouldEqual, scoring.AlignPaired)

		Convey("When the upload matches the reference", func() {
			res, err := scorer.Score(ctx, strings.NewReader(reference), strings.NewReader(reference))

			Convey("Then the score is zero", func() {
				So(err, ShouldBeNil)
				So(res.RMSE, ShouldEqual, 0)
				So(res.Rows, ShouldEqual, 3)
			})
		})

		Convey("When every prediction is one ring high", func() {
			res, err := scorer.Score(ctx, strings.NewReader(reference), strings.NewReader("id,Rings\n1,10\n2,11\n3,8\n"))
			So(err, ShouldBeNil)
			So(res.RMSE, ShouldEqual, 1.0)
		})

		Convey("When the upload has fewer rows", func() {
			_, err := scorer.Score(ctx, strings.NewReader(reference), strings.NewReader("id,Rings\n1,9\n2,10\n"))

			Convey("Then it is a validation error", func() {
				So(errors.Is(err, scoring.ErrLengthMismatch), ShouldBeTrue)
				So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)
				So(errors.Is(err, scoring.ErrReference), ShouldBeFalse)
			})
		})

		Convey("When the upload lacks the Rings column", func() {
			_, err := scorer.Score(ctx, strings.NewReader(reference), strings.NewReader("id,Age\n1,9\n"))
			So(errors.Is(err, scoring.ErrMissingColumn), ShouldBeTrue)
		})

		Convey("When the reference is broken", func() {
			_, err := scorer.Score(ctx, strings.NewReader("id,Age\n1,9\n"), strings.NewReader(reference))

			Convey("Then it is a reference error, not a validation error", func() {
				So(errors.Is(err, scoring.ErrReference), ShouldBeTrue)
				So(errors.Is(err, scoring.ErrValidation), ShouldBeFalse)
			})
		})

		Convey("When the reference has no rows", func() {
			_, err := scorer.Score(ctx, strings.NewReader("id,Rings\n"), strings.NewReader("id,Rings\n"))
			So(errors.Is(err, scoring.ErrReference), ShouldBeTrue)
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := scorer.Score(cctx, strings.NewReader(reference), strings.NewReader(reference))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given a scorer using independent alignment on a custom column", t, func() {
		scorer := scoring.NewCSVScorer(
			scoring.WithColumn("Target"),
			scoring.WithAlignment(scoring.AlignIndependent),
		)

		Convey("When the upload has an extra junk row", func() {
			res, err := scorer.Score(context.Background(),
				strings.NewReader("Target\n1\n2\n3\n"),
				strings.NewReader("Target\n1\nn/a\n2\n3\n"))

			Convey("Then it is scored after dropping the junk", func() {
				So(err, ShouldBeNil)
				So(res.RMSE, ShouldEqual, 0)
				So(res.Rows, ShouldEqual, 3)
			})
		})
	})
}
