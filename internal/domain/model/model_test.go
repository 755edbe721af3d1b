package model_test

import (
	"testing"

	"github.com/okian/tsuki/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewEvent(t *testing.T) {
	Convey("Given an ordered run of samples", t, func() {
		samples := []model.Sample{
			{TS: 0.1, Magnitude: 120},
			{TS: 0.2, Magnitude: 450},
			{TS: 0.3, Magnitude: 80},
			{TS: 0.4, Magnitude: 0},
		}

		Convey("When building an accepted event", func() {
			ev := model.NewEvent(samples, model.StatusAccepted)

			Convey("Then it spans the run and carries the max magnitude", func() {
				So(ev.StartTS, ShouldEqual, 0.1)
				So(ev.EndTS, ShouldEqual, 0.4)
				So(ev.Peak, ShouldEqual, 450)
				So(ev.Accepted(), ShouldBeTrue)
				So(ev.ID, ShouldNotBeEmpty)
			})
		})

		Convey("When building an ignored event", func() {
			ev := model.NewEvent(samples, model.StatusIgnored)

			Convey("Then it keeps the payload but is not accepted", func() {
				So(ev.Peak, ShouldEqual, 450)
				So(ev.Accepted(), ShouldBeFalse)
				So(ev.Status.String(), ShouldEqual, "ignored")
			})
		})
	})
}

func TestEventNormalized(t *testing.T) {
	Convey("Given an event starting at a non-zero timestamp", t, func() {
		ev := model.NewEvent([]model.Sample{
			{TS: 12.5, Magnitude: 200},
			{TS: 12.6, Magnitude: 900},
			{TS: 12.7, Magnitude: 40},
		}, model.StatusAccepted)

		Convey("When normalizing its samples", func() {
			norm := ev.Normalized()

			Convey("Then the first sample sits at t=0 and spacing is preserved", func() {
				So(len(norm), ShouldEqual, 3)
				So(norm[0].TS, ShouldEqual, 0)
				So(norm[1].TS, ShouldAlmostEqual, 0.1, 1e-9)
				So(norm[2].TS, ShouldAlmostEqual, 0.2, 1e-9)
				So(norm[1].Magnitude, ShouldEqual, 900)
			})

			Convey("And the original samples are untouched", func() {
				So(ev.Samples[0].TS, ShouldEqual, 12.5)
			})
		})
	})
}

func TestEventEmptySamples(t *testing.T) {
	Convey("Given no samples", t, func() {
		ev := model.NewEvent(nil, model.StatusAccepted)

		Convey("Then the event is zero-valued but well-formed", func() {
			So(ev.Peak, ShouldEqual, 0)
			So(ev.StartTS, ShouldEqual, 0)
			So(len(ev.Normalized()), ShouldEqual, 0)
		})
	})
}
