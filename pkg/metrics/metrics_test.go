package metrics_test

import (
	"strings"
	"testing"

	"github.com/okian/tsuki/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// gather flattens the registry into metric family names.
func gather(t *testing.T) map[string]bool {
	t.Helper()
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestGlobalRegistryExposure(t *testing.T) {
	Convey("Given the package-level manager", t, func() {
		Convey("When the engine records a typical sample lifecycle", func() {
			metrics.RecordSampleIngested()
			metrics.RecordSampleMalformed()
			metrics.UpdatePipeCapacity(4096)
			metrics.UpdatePipeSize(12)
			metrics.RecordPipeEnqueue()
			metrics.RecordPipeEnqueueError("closed")
			metrics.RecordEventFinalized("accepted", 2500, 12)
			metrics.UpdatePeakValue(2500)
			metrics.RecordPeakReset()
			metrics.UpdateLastScore(2500)
			metrics.RecordLeaderboardInsert()
			metrics.UpdateWindowSamples(500)
			metrics.UpdateSourceFallback(true)
			metrics.RecordHTTPRequest("/api/v1/peak", "GET", "200")
			metrics.RecordHTTPRequestDuration("/api/v1/peak", "GET", 0.002)

			Convey("Then every domain metric family is registered", func() {
				names := gather(t)
				for _, want := range []string{
					"tsuki_engine_samples_ingested_total",
					"tsuki_engine_samples_malformed_total",
					"tsuki_engine_pipe_capacity",
					"tsuki_engine_pipe_size",
					"tsuki_engine_pipe_enqueue_total",
					"tsuki_engine_pipe_enqueue_errors_total",
					"tsuki_engine_events_finalized_total",
					"tsuki_engine_event_peak_newtons",
					"tsuki_engine_peak_newtons",
					"tsuki_engine_peak_resets_total",
					"tsuki_engine_last_score",
					"tsuki_engine_leaderboard_inserts_total",
					"tsuki_engine_window_samples",
					"tsuki_engine_source_fallback",
					"tsuki_engine_http_requests_total",
					"tsuki_engine_http_request_duration_seconds",
				} {
					So(names[want], ShouldBeTrue)
				}
			})
		})
	})
}

func TestManagerOptions(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithNamespace("custom"),
			metrics.WithSubsystem("rig"),
			metrics.WithPrometheusRegistry(reg),
		)
		So(m, ShouldNotBeNil)

		Convey("When gathering the private registry", func() {
			families, err := reg.Gather()
			So(err, ShouldBeNil)

			Convey("Then metrics carry the custom namespace", func() {
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "custom_rig_"), ShouldBeTrue)
				}
			})
		})
	})
}
