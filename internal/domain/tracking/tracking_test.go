package tracking_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/medvane/wardboard/internal/domain/model"
	"github.com/medvane/wardboard/internal/domain/tracking"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTrackerLifecycle(t *testing.T) {
	Convey("Given a fresh tracker", t, func() {
		tr := tracking.NewInMemoryTracker()
		ctx := context.Background()
		base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

		Convey("When a feature is viewed briefly", func() {
			tr.StartViewing(ctx, "vitals", base)
			sig, ok := tr.StopViewing(ctx, "vitals", base.Add(2*time.Second))

			Convey("Then a quick glance signal is produced", func() {
				So(ok, ShouldBeTrue)
				So(sig.FeatureID, ShouldEqual, "vitals")
				So(sig.Kind, ShouldEqual, model.SignalQuickGlance)
				So(sig.Success, ShouldBeTrue)
				So(sig.Weight, ShouldEqual, 1.0)
				So(sig.Dwell, ShouldEqual, 2*time.Second)
			})

			Convey("And the observation is closed", func() {
				So(tr.OpenCount(), ShouldEqual, 0)
			})
		})

		Convey("When a feature is viewed at length", func() {
			tr.StartViewing(ctx, "lab_results", base)
			sig, ok := tr.StopViewing(ctx, "lab_results", base.Add(secs(31)))

			Convey("Then a prolonged read signal is produced", func() {
				So(ok, ShouldBeTrue)
				So(sig.Kind, ShouldEqual, model.SignalProlongedRead)
				So(sig.Weight, ShouldEqual, 1.5)
			})
		})

		Convey("When the dwell lands in the neutral band", func() {
			tr.StartViewing(ctx, "imaging", base)
			_, ok := tr.StopViewing(ctx, "imaging", base.Add(15*time.Second))

			Convey("Then no signal is produced but the observation closes", func() {
				So(ok, ShouldBeFalse)
				So(tr.OpenCount(), ShouldEqual, 0)
			})
		})

		Convey("When stop arrives without a start", func() {
			_, ok := tr.StopViewing(ctx, "ecg", base)

			Convey("Then it is a silent no-op", func() {
				So(ok, ShouldBeFalse)
				So(tr.OpenCount(), ShouldEqual, 0)
			})
		})

		Convey("When start is re-entered for the same feature", func() {
			tr.StartViewing(ctx, "vitals", base)
			tr.StartViewing(ctx, "vitals", base.Add(40*time.Second))
			sig, ok := tr.StopViewing(ctx, "vitals", base.Add(42*time.Second))

			Convey("Then the last start wins", func() {
				So(ok, ShouldBeTrue)
				So(sig.Kind, ShouldEqual, model.SignalQuickGlance)
				So(sig.Dwell, ShouldEqual, 2*time.Second)
			})
		})

		Convey("When the stop timestamp predates the start", func() {
			tr.StartViewing(ctx, "vitals", base)
			sig, ok := tr.StopViewing(ctx, "vitals", base.Add(-5*time.Second))

			Convey("Then the dwell clamps to zero and classifies quick", func() {
				So(ok, ShouldBeTrue)
				So(sig.Dwell, ShouldEqual, time.Duration(0))
				So(sig.Kind, ShouldEqual, model.SignalQuickGlance)
			})
		})

		Convey("When the feature id is empty", func() {
			tr.StartViewing(ctx, "", base)

			Convey("Then nothing is recorded", func() {
				So(tr.OpenCount(), ShouldEqual, 0)
			})
		})
	})
}

func TestTrackerScrolledPast(t *testing.T) {
	Convey("Given a tracker", t, func() {
		tr := tracking.NewInMemoryTracker()
		ctx := context.Background()
		at := time.Now()

		Convey("When a section is scrolled past while idle", func() {
			sig := tr.ScrolledPast(ctx, "care_plan", at)

			Convey("Then the weak negative signal is produced", func() {
				So(sig.Kind, ShouldEqual, model.SignalScrolledPast)
				So(sig.Success, ShouldBeFalse)
				So(sig.Weight, ShouldEqual, 0.5)
				So(sig.At, ShouldEqual, at)
			})
		})

		Convey("When a section is scrolled past while open", func() {
			tr.StartViewing(ctx, "care_plan", at)
			sig := tr.ScrolledPast(ctx, "care_plan", at.Add(time.Second))

			Convey("Then the signal is produced and the observation clears", func() {
				So(sig.Kind, ShouldEqual, model.SignalScrolledPast)
				So(tr.OpenCount(), ShouldEqual, 0)
			})
		})
	})
}

func TestTrackerBounds(t *testing.T) {
	Convey("Given a tracker with a small open cap", t, func() {
		tr := tracking.NewInMemoryTracker(tracking.WithMaxOpen(2))
		ctx := context.Background()
		at := time.Now()

		Convey("When more features open than the cap allows", func() {
			tr.StartViewing(ctx, "a", at)
			tr.StartViewing(ctx, "b", at)
			tr.StartViewing(ctx, "c", at)

			Convey("Then the overflow start is dropped", func() {
				So(tr.OpenCount(), ShouldEqual, 2)

				_, ok := tr.StopViewing(ctx, "c", at.Add(time.Second))
				So(ok, ShouldBeFalse)
			})

			Convey("And restarting a tracked feature still works at the cap", func() {
				tr.StartViewing(ctx, "a", at.Add(10*time.Second))
				So(tr.OpenCount(), ShouldEqual, 2)
			})
		})
	})
}

func TestTrackerConcurrency(t *testing.T) {
	Convey("Given concurrent sessions hammering one tracker", t, func() {
		tr := tracking.NewInMemoryTracker()
		ctx := context.Background()
		base := time.Now()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				id := fmt.Sprintf("section_%d", n)
				for j := 0; j < 200; j++ {
					tr.StartViewing(ctx, id, base)
					tr.StopViewing(ctx, id, base.Add(time.Second))
					tr.ScrolledPast(ctx, id, base)
				}
			}(i)
		}
		wg.Wait()

		Convey("Then no observations leak", func() {
			So(tr.OpenCount(), ShouldEqual, 0)
		})
	})
}

// secs returns n seconds as a duration; keeps dwell literals readable.
func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}
