package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with the service namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "abalone")
				So(manager.subsystem, ShouldEqual, "leaderboard")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.leaderboardReads.Inc()

			Convey("Then collectors carry the custom names and labels", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, mf := range families {
					if mf.GetName() != "test_namespace_test_subsystem_leaderboard_reads_total" {
						continue
					}
					found = true
					labels := mf.GetMetric()[0].GetLabel()
					So(labels, ShouldHaveLength, 1)
					So(labels[0].GetName(), ShouldEqual, "env")
					So(labels[0].GetValue(), ShouldEqual, "test")
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When two managers share one registry", func() {
			registry := prometheus.NewRegistry()
			_ = NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When submissions are recorded", func() {
			before := testutil.ToFloat64(globalManager.submissions.WithLabelValues(ResultRejected))
			RecordSubmission(ResultRejected)
			RecordSubmission(ResultRejected)

			Convey("Then the counter for that outcome grows", func() {
				after := testutil.ToFloat64(globalManager.submissions.WithLabelValues(ResultRejected))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When a leaderboard read is recorded", func() {
			RecordLeaderboardRead(7)

			Convey("Then the size gauge follows the latest read", func() {
				So(testutil.ToFloat64(globalManager.leaderboardSize), ShouldEqual, 7)
			})
		})

		Convey("When a failed store operation is recorded", func() {
			counter := globalManager.storeOperations.WithLabelValues("insert", "memory", "error")
			before := testutil.ToFloat64(counter)
			RecordStoreOperation("insert", "memory", errors.New("down"), 1.5)

			Convey("Then the error result is counted", func() {
				So(testutil.ToFloat64(counter)-before, ShouldEqual, 1)
			})
		})

		Convey("When the remaining recorders are called", func() {
			So(func() {
				RecordRMSE(2.1)
				RecordScoringLatency(3)
				RecordScoredRows(1000)
				RecordHTTPRequest("/api/leaderboard", "GET", "200")
				RecordHTTPRequestDuration("/api/leaderboard", "GET", "200", 4)
				RecordErrorByComponent("http", "validation")
				RecordErrorByType("validation", "low")
				RecordErrorByEndpoint("/api/upload", "POST", "validation")
				RecordErrorLatency("http", "validation", 1)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)

			Convey("Then the custom registry exposes them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, mf := range families {
					names = append(names, mf.GetName())
				}
				joined := strings.Join(names, ",")
				So(joined, ShouldContainSubstring, "abalone_leaderboard_submission_rmse")
				So(joined, ShouldContainSubstring, "abalone_leaderboard_http_requests_total")
				So(joined, ShouldContainSubstring, "abalone_leaderboard_system_goroutine_count")
			})
		})
	})
}
