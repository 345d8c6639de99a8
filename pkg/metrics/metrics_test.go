package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors are registered under the default namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.eventRowsParsed.Add(1)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "attendance_report_event_rows_parsed_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.lookupMisses.Add(2)

			Convey("Then names and labels follow the options", func() {
				expected := `
# HELP test_unit_identity_lookup_misses_total Names with no section/roll record
# TYPE test_unit_identity_lookup_misses_total counter
test_unit_identity_lookup_misses_total{env="test"} 2
`
				err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_unit_identity_lookup_misses_total")
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording report outcomes", func() {
			before := testutil.ToFloat64(globalManager.reportsGenerated.WithLabelValues("csv", OutcomeSuccess))
			RecordReport("csv", OutcomeSuccess)
			RecordReport("csv", OutcomeSuccess)

			Convey("Then the labelled counter advances", func() {
				after := testutil.ToFloat64(globalManager.reportsGenerated.WithLabelValues("csv", OutcomeSuccess))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording row and participant counts", func() {
			parsed := testutil.ToFloat64(globalManager.eventRowsParsed)
			kept := testutil.ToFloat64(globalManager.participantsKept)
			RecordEventRows(6, 1)
			RecordParticipants(2, 1)

			Convey("Then counters add the given amounts", func() {
				So(testutil.ToFloat64(globalManager.eventRowsParsed)-parsed, ShouldEqual, 6)
				So(testutil.ToFloat64(globalManager.participantsKept)-kept, ShouldEqual, 1)
			})
		})

		Convey("When recording gauges and histograms", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordStageLatency(StageMerge, 0.3)
					RecordStageLatency(StageLookup, 12)
					RecordReportRows(40)
					UpdateLastReport(1_700_000_000)
					RecordLookupMisses(3)
					RecordLookupError()
					RecordHTTPRequest("upload", "POST", "200")
					RecordHTTPRequestDuration("upload", "POST", "200", 15.0)
					RecordErrorByComponent("identity", "unavailable")
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("upload", "POST", "client_error")
					RecordErrorLatency("http", "client_error", 5)
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.2)
				}, ShouldNotPanic)
				So(testutil.ToFloat64(globalManager.lastReportUnix), ShouldEqual, 1_700_000_000)
			})
		})

		Convey("When reading the registry", func() {
			Convey("Then it is the shared custom registry", func() {
				So(GetRegistry(), ShouldEqual, customRegistry)
			})
		})
	})
}
