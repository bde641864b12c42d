package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/medvane/wardboard/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a fresh deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		ctx := context.Background()

		Convey("When a feedback key is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "sug-1|accept")

			Convey("Then it reports not seen and records it", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a second submission reports seen", func() {
				So(d.SeenAndRecord(ctx, "sug-1|accept"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a different action on the same suggestion is distinct", func() {
				So(d.SeenAndRecord(ctx, "sug-1|ignore"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When a recorded key is unrecorded", func() {
			d.SeenAndRecord(ctx, "sug-2|accept")
			d.Unrecord(ctx, "sug-2|accept")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "sug-2|accept"), ShouldBeFalse)
			})
		})

		Convey("When an unknown key is unrecorded", func() {
			d.Unrecord(ctx, "never-seen")

			Convey("Then nothing happens", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestDeduperEviction(t *testing.T) {
	Convey("Given a deduper bounded to 3 keys", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		ctx := context.Background()

		Convey("When a fourth key arrives", func() {
			for i := 1; i <= 4; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i)), ShouldBeFalse)
			}

			Convey("Then the size stays at the cap", func() {
				So(d.Size(), ShouldEqual, 3)
			})

			Convey("And the oldest key was evicted, newest kept", func() {
				So(d.SeenAndRecord(ctx, "k1"), ShouldBeFalse) // evicted, re-recorded
				So(d.SeenAndRecord(ctx, "k4"), ShouldBeTrue)
			})
		})

		Convey("When eviction meets unrecorded stale markers", func() {
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.Unrecord(ctx, "a")
			d.SeenAndRecord(ctx, "c")
			d.SeenAndRecord(ctx, "d")
			// Set is {b, c, d}; the next insert must evict b, not the
			// stale marker for a.
			d.SeenAndRecord(ctx, "e")

			Convey("Then live keys evict in insertion order", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "b"), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		ctx := context.Background()

		Convey("When many keys are recorded", func() {
			for i := 0; i < 1000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 1000)
				So(d.SeenAndRecord(ctx, "k0"), ShouldBeTrue)
			})
		})
	})
}

func TestDeduperConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10000))
		ctx := context.Background()

		var wg sync.WaitGroup
		var mu sync.Mutex
		firsts := make(map[string]int)

		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 500; i++ {
					key := fmt.Sprintf("k%d", i)
					if !d.SeenAndRecord(ctx, key) {
						mu.Lock()
						firsts[key]++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then each key is recorded exactly once", func() {
			So(len(firsts), ShouldEqual, 500)
			for _, n := range firsts {
				So(n, ShouldEqual, 1)
			}
			So(d.Size(), ShouldEqual, 500)
		})
	})
}
