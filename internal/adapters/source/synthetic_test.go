package source_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/tsuki/internal/adapters/source"
	"github.com/okian/tsuki/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSyntheticWaveform(t *testing.T) {
	Convey("Given a generator with amplitude 2500 and a 5 second period", t, func() {
		gen := source.NewSynthetic(
			source.WithAmplitude(2500),
			source.WithPeriod(5.0),
		)

		Convey("Then the pulse peaks mid-pulse and floors to zero elsewhere", func() {
			// Pulse occupies the first 0.1s of each period.
			So(gen.MagnitudeAt(0.05), ShouldAlmostEqual, 2500, 1e-6)
			So(gen.MagnitudeAt(0.1), ShouldEqual, 0)
			So(gen.MagnitudeAt(2.5), ShouldEqual, 0)
			So(gen.MagnitudeAt(4.99), ShouldEqual, 0)
			So(gen.MagnitudeAt(5.05), ShouldAlmostEqual, 2500, 1e-6)
		})

		Convey("And the waveform never goes negative", func() {
			for ts := 0.0; ts < 10.0; ts += 0.01 {
				So(gen.MagnitudeAt(ts), ShouldBeGreaterThanOrEqualTo, 0)
			}
		})

		Convey("And two identical generators agree everywhere", func() {
			other := source.NewSynthetic(
				source.WithAmplitude(2500),
				source.WithPeriod(5.0),
			)
			for ts := 0.0; ts < 10.0; ts += 0.07 {
				So(other.MagnitudeAt(ts), ShouldEqual, gen.MagnitudeAt(ts))
			}
		})
	})
}

func TestSyntheticRun(t *testing.T) {
	Convey("Given a fast generator", t, func() {
		gen := source.NewSynthetic(source.WithSampleInterval(time.Millisecond))

		Convey("When it runs until cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			var got []model.Sample
			done := make(chan error, 1)
			go func() {
				done <- gen.Run(ctx, func(_ context.Context, s model.Sample) bool {
					got = append(got, s)
					return true
				})
			}()
			time.Sleep(50 * time.Millisecond)
			cancel()
			So(<-done, ShouldBeNil)

			Convey("Then it emitted monotonic deterministic timestamps", func() {
				So(len(got), ShouldBeGreaterThan, 5)
				for i := 1; i < len(got); i++ {
					So(got[i].TS, ShouldBeGreaterThan, got[i-1].TS)
				}
				So(got[0].TS, ShouldEqual, 0)
				So(got[1].TS, ShouldAlmostEqual, 0.001, 1e-9)
			})
		})
	})
}
