package pipe_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/tsuki/internal/adapters/mq/pipe"
	"github.com/okian/tsuki/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEnqueueDequeueOrder(t *testing.T) {
	Convey("Given a pipe with capacity 8", t, func() {
		p := pipe.New(pipe.WithCapacity(8))
		ctx := context.Background()

		Convey("When five samples are enqueued", func() {
			for i := 0; i < 5; i++ {
				ok := p.Enqueue(ctx, model.Sample{TS: float64(i), Magnitude: float64(i * 10)})
				So(ok, ShouldBeTrue)
			}
			So(p.Len(), ShouldEqual, 5)

			Convey("Then the consumer receives them in FIFO order", func() {
				So(p.Close(), ShouldBeNil)
				var got []model.Sample
				for s := range p.Dequeue() {
					got = append(got, s)
				}
				So(len(got), ShouldEqual, 5)
				for i, s := range got {
					So(s.TS, ShouldEqual, float64(i))
				}
			})
		})
	})
}

func TestEnqueueBlocksWhenFull(t *testing.T) {
	Convey("Given a full pipe with capacity 1", t, func() {
		p := pipe.New(pipe.WithCapacity(1))
		ctx := context.Background()
		So(p.Enqueue(ctx, model.Sample{TS: 1}), ShouldBeTrue)

		Convey("When a consumer frees a slot while a producer waits", func() {
			done := make(chan bool, 1)
			go func() {
				done <- p.Enqueue(ctx, model.Sample{TS: 2})
			}()

			time.Sleep(20 * time.Millisecond)
			returnedEarly := false
			select {
			case <-done:
				returnedEarly = true
			default:
			}
			So(returnedEarly, ShouldBeFalse)

			<-p.Dequeue()

			Convey("Then the blocked enqueue completes rather than dropping", func() {
				So(<-done, ShouldBeTrue)
				So(p.Len(), ShouldEqual, 1)
			})
		})

		Convey("When the producer's context is cancelled while blocked", func() {
			cctx, cancel := context.WithCancel(context.Background())
			done := make(chan bool, 1)
			go func() {
				done <- p.Enqueue(cctx, model.Sample{TS: 3})
			}()
			cancel()

			Convey("Then the enqueue gives up without blocking forever", func() {
				So(<-done, ShouldBeFalse)
			})
		})
	})
}

func TestCloseSemantics(t *testing.T) {
	Convey("Given an open pipe", t, func() {
		p := pipe.New()

		Convey("When it is closed", func() {
			So(p.Close(), ShouldBeNil)

			Convey("Then enqueue refuses and dequeue ends", func() {
				So(p.IsClosed(), ShouldBeTrue)
				So(p.Enqueue(context.Background(), model.Sample{}), ShouldBeFalse)
				_, open := <-p.Dequeue()
				So(open, ShouldBeFalse)
			})

			Convey("And closing again is a no-op", func() {
				So(p.Close(), ShouldBeNil)
			})
		})
	})
}
