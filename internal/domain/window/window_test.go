package window_test

import (
	"testing"

	"github.com/okian/tsuki/internal/domain/model"
	"github.com/okian/tsuki/internal/domain/window"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBufferEviction(t *testing.T) {
	Convey("Given a buffer with a 5 second span", t, func() {
		buf := window.New(window.WithSpan(5.0))

		Convey("When appending samples across 8 seconds", func() {
			for i := 0; i <= 80; i++ {
				buf.Append(model.Sample{TS: float64(i) * 0.1, Magnitude: float64(i)})
			}

			Convey("Then no retained sample is older than the span", func() {
				snap := buf.Snapshot()
				So(len(snap), ShouldBeGreaterThan, 0)
				newest := snap[len(snap)-1].TS
				for _, s := range snap {
					So(newest-s.TS, ShouldBeLessThanOrEqualTo, 5.0)
				}
			})

			Convey("And the snapshot stays ordered oldest first", func() {
				snap := buf.Snapshot()
				for i := 1; i < len(snap); i++ {
					So(snap[i].TS, ShouldBeGreaterThanOrEqualTo, snap[i-1].TS)
				}
			})
		})

		Convey("When a large time gap arrives", func() {
			buf.Append(model.Sample{TS: 1.0, Magnitude: 10})
			buf.Append(model.Sample{TS: 2.0, Magnitude: 20})
			buf.Append(model.Sample{TS: 100.0, Magnitude: 30})

			Convey("Then only the newest sample survives", func() {
				snap := buf.Snapshot()
				So(len(snap), ShouldEqual, 1)
				So(snap[0].TS, ShouldEqual, 100.0)
			})
		})
	})
}

func TestBufferClampsRegressions(t *testing.T) {
	Convey("Given a buffer that has seen t=5", t, func() {
		buf := window.New()
		buf.Append(model.Sample{TS: 5.0, Magnitude: 1})

		Convey("When a sample arrives with an earlier timestamp", func() {
			buf.Append(model.Sample{TS: 3.0, Magnitude: 2})

			Convey("Then its timestamp is clamped to the newest seen", func() {
				snap := buf.Snapshot()
				So(len(snap), ShouldEqual, 2)
				So(snap[1].TS, ShouldEqual, 5.0)
				So(snap[1].Magnitude, ShouldEqual, 2)
			})
		})
	})
}

func TestBufferSnapshotIsCopy(t *testing.T) {
	Convey("Given a buffer with one sample", t, func() {
		buf := window.New()
		buf.Append(model.Sample{TS: 1.0, Magnitude: 42})

		Convey("When a reader mutates the snapshot", func() {
			snap := buf.Snapshot()
			snap[0].Magnitude = -1

			Convey("Then the buffer is unaffected", func() {
				So(buf.Snapshot()[0].Magnitude, ShouldEqual, 42)
			})
		})
	})
}
