package engine_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	engine "github.com/okian/tsuki/internal/app"
	"github.com/okian/tsuki/internal/domain/model"
	"github.com/okian/tsuki/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// recorder captures fan-out callbacks for assertions.
type recorder struct {
	mu      sync.Mutex
	samples int
	events  []model.Event
	peaks   []model.PeakRecord
}

func (r *recorder) OnSample(model.Sample) {
	r.mu.Lock()
	r.samples++
	r.mu.Unlock()
}

func (r *recorder) OnEvent(ev model.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) OnPeak(rec model.PeakRecord, _ float64) {
	r.mu.Lock()
	r.peaks = append(r.peaks, rec)
	r.mu.Unlock()
}

func (r *recorder) snapshot() (int, []model.Event, []model.PeakRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.samples, append([]model.Event(nil), r.events...), append([]model.PeakRecord(nil), r.peaks...)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func writeStream(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stream.txt")
	if err := os.WriteFile(path, []byte(lines), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEngineEndToEnd(t *testing.T) {
	Convey("Given a recorded stream with two clean pulses and one bounce", t, func() {
		// Timestamps in ms; scale factor 1 keeps magnitudes literal.
		stream := "" +
			"0,0\n100,150\n200,300\n300,0\n" + // pulse 1, peak 300
			"2000,0\n2100,500\n2200,0\n" + // pulse 2, peak 500
			"2400,0\n2500,800\n2600,0\n" // bounce 0.4s later, ignored
		path := writeStream(t, stream)

		rec := &recorder{}
		e := engine.New(
			engine.WithSourceEndpoint(path),
			engine.WithScaleFactor(1.0),
			engine.WithThresholds(100, 50),
			engine.WithDebounce(1.0),
			engine.WithHistoryDepth(3),
			engine.WithLeaderboardDepth(5),
		)
		e.Subscribe(rec)

		Convey("When the engine consumes the whole stream", func() {
			So(e.Start(context.Background()), ShouldBeNil)
			defer e.Stop()
			waitFor(t, func() bool {
				samples, events, _ := rec.snapshot()
				return samples == 10 && len(events) == 3
			})

			Convey("Then history holds the accepted pulses newest first", func() {
				hist := e.HistorySnapshot()
				So(len(hist), ShouldEqual, 2)
				So(hist[0].Peak, ShouldEqual, 500)
				So(hist[1].Peak, ShouldEqual, 300)
			})

			Convey("And the bounce was finalized but ignored", func() {
				_, events, _ := rec.snapshot()
				So(len(events), ShouldEqual, 3)
				So(events[0].Status, ShouldEqual, model.StatusAccepted)
				So(events[1].Status, ShouldEqual, model.StatusAccepted)
				So(events[2].Status, ShouldEqual, model.StatusIgnored)
				So(events[2].Peak, ShouldEqual, 800)
			})

			Convey("And the peak tracker ignores the ignored pulse", func() {
				peakRec, remaining := e.PeakSnapshot()
				So(peakRec.Magnitude, ShouldEqual, 500)
				// Peak observed at 2.2s, newest sample at 2.6s.
				So(remaining, ShouldAlmostEqual, 9.6, 1e-9)
			})

			Convey("And peak updates fanned out only for accepted pulses", func() {
				_, _, peaks := rec.snapshot()
				So(len(peaks), ShouldEqual, 2)
				So(peaks[1].Magnitude, ShouldEqual, 500)
			})

			Convey("And scoring reflects the last accepted pulse", func() {
				last, board := e.ScoreSnapshot()
				So(last.Score, ShouldEqual, 500)
				So(last.Tier, ShouldEqual, "not bad")
				So(len(board), ShouldEqual, 2)
				So(board[0].Score, ShouldEqual, 500)
				So(board[1].Score, ShouldEqual, 300)
			})

			Convey("And the status line announces the second pulse", func() {
				So(e.Status(), ShouldContainSubstring, "pulse #2")
			})

			Convey("And counters add up", func() {
				stats := e.Stats()
				So(stats["samples"], ShouldEqual, uint64(10))
				So(stats["eventsAccepted"], ShouldEqual, uint64(2))
				So(stats["eventsIgnored"], ShouldEqual, uint64(1))
				So(stats["fallback"], ShouldBeFalse)
			})
		})
	})
}

func TestEngineWindowBound(t *testing.T) {
	Convey("Given a stream spanning 8 seconds and a 5 second window", t, func() {
		var b strings.Builder
		for i := 0; i <= 80; i++ {
			fmt.Fprintf(&b, "%d,0\n", i*100)
		}
		path := writeStream(t, b.String())

		e := engine.New(
			engine.WithSourceEndpoint(path),
			engine.WithScaleFactor(1.0),
			engine.WithWindowSpan(5.0),
		)

		Convey("When the engine consumes the stream", func() {
			So(e.Start(context.Background()), ShouldBeNil)
			defer e.Stop()
			waitFor(t, func() bool {
				return e.Stats()["samples"] == uint64(81)
			})

			Convey("Then the window never holds anything older than the span", func() {
				snap := e.WindowSnapshot()
				So(len(snap), ShouldBeGreaterThan, 0)
				newest := snap[len(snap)-1].TS
				for _, s := range snap {
					So(newest-s.TS, ShouldBeLessThanOrEqualTo, 5.0)
				}
			})
		})
	})
}

func TestEngineFallback(t *testing.T) {
	Convey("Given an unreachable live endpoint", t, func() {
		e := engine.New(
			engine.WithSourceEndpoint(filepath.Join(t.TempDir(), "absent")),
			engine.WithSynthetic(2500, 5.0),
		)

		Convey("When the engine starts", func() {
			So(e.Start(context.Background()), ShouldBeNil)
			defer e.Stop()

			Convey("Then it runs on the synthetic generator with the flag raised", func() {
				So(e.Fallback(), ShouldBeTrue)
			})
		})
	})
}

func TestEngineRejectsBadThresholds(t *testing.T) {
	Convey("Given a continue threshold above the start threshold", t, func() {
		e := engine.New(engine.WithThresholds(50, 100))

		Convey("When the engine starts", func() {
			err := e.Start(context.Background())

			Convey("Then startup fails with a descriptive error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "continue threshold")
			})
		})
	})
}

func TestEngineStopIsIdempotent(t *testing.T) {
	Convey("Given a running engine on synthetic input", t, func() {
		e := engine.New()

		So(e.Start(context.Background()), ShouldBeNil)

		Convey("When stopped twice", func() {
			e.Stop()
			e.Stop()

			Convey("Then nothing blows up and stats survive", func() {
				So(e.Stats()["started"], ShouldBeFalse)
			})
		})
	})
}
