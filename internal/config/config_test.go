package config_test

import (
	"errors"
	"testing"

	"github.com/okian/abalone/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.TargetColumn, convey.ShouldEqual, "Rings")
			convey.So(cfg.ReferenceFile, convey.ShouldEqual, "data/Correct_output_to_validate.csv")
			convey.So(cfg.Alignment, convey.ShouldEqual, config.AlignmentPaired)
			convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, int64(10<<20))
			convey.So(cfg.MaxTeamMembers, convey.ShouldEqual, 4)
			convey.So(cfg.DailySubmissionLimit, convey.ShouldEqual, 5)
			convey.So(cfg.DatabaseURL, convey.ShouldBeEmpty)
		})

		convey.Convey("Then it should not validate without a database url", func() {
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "database_url")
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with a database url", t, func() {
		cfg := config.New()
		cfg.DatabaseURL = "memory://"

		convey.Convey("Then it validates", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When alignment is unknown", func() {
			cfg.Alignment = "fuzzy"

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the legacy alignment is chosen", func() {
			cfg.Alignment = config.AlignmentIndependent

			convey.Convey("Then it validates", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When limits are negative", func() {
			cfg.DailySubmissionLimit = -1

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the upload cap is zero", func() {
			cfg.MaxUploadBytes = 0

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})
	})
}
