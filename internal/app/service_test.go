package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/medvane/wardboard/internal/app"
	"github.com/medvane/wardboard/internal/domain/types"
	"github.com/medvane/wardboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithMaxSessions(100),
			service.WithRefreshInterval(time.Minute),
			service.WithDefaultDensity("medium"),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		// Ensure service is stopped after test
		defer svc.Stop(context.Background())

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop(ctx)

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_SeenAndRecord(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		// Ensure service is stopped after test
		defer svc.Stop(context.Background())

		Convey("When checking a new feedback key", func() {
			seen := svc.SeenAndRecord(ctx, "sug-123:accept")

			Convey("Then it should not have been seen before", func() {
				So(seen, ShouldBeFalse)
			})
		})

		Convey("When checking the same feedback key again", func() {
			svc.SeenAndRecord(ctx, "sug-456:ignore")         // First time
			seen := svc.SeenAndRecord(ctx, "sug-456:ignore") // Second time

			Convey("Then it should have been seen before", func() {
				So(seen, ShouldBeTrue)
			})
		})

		Convey("When a recorded key is unrecorded", func() {
			svc.SeenAndRecord(ctx, "sug-789:accept")
			svc.Unrecord(ctx, "sug-789:accept")
			seen := svc.SeenAndRecord(ctx, "sug-789:accept")

			Convey("Then it should be recordable again", func() {
				So(seen, ShouldBeFalse)
			})
		})
	})
}

func TestService_Sessions(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		defer svc.Stop(context.Background())

		Convey("When opening a session with a specialty", func() {
			info, err := svc.OpenSession(ctx, "Cardiology")

			Convey("Then it should return session details", func() {
				So(err, ShouldBeNil)
				So(info.SessionID, ShouldNotBeEmpty)
				So(info.Specialty, ShouldEqual, "cardiology")
				So(info.RefreshIntervalMS, ShouldEqual, int64(300_000))
			})

			Convey("And its layout should partition the catalog", func() {
				resp, ok := svc.SessionLayout(ctx, info.SessionID)
				So(ok, ShouldBeTrue)
				So(len(resp.Visible)+len(resp.Hidden), ShouldEqual, 12)
				So(resp.PlanApplied, ShouldBeFalse)
				So(resp.SuggestionDensity, ShouldEqual, "high")
			})

			Convey("And closing it should succeed exactly once", func() {
				So(svc.CloseSession(ctx, info.SessionID), ShouldBeTrue)
				So(svc.CloseSession(ctx, info.SessionID), ShouldBeFalse)
			})
		})

		Convey("When querying an unknown session", func() {
			_, ok := svc.SessionLayout(ctx, "no-such-session")

			Convey("Then it should report not found", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestService_RecordInteraction(t *testing.T) {
	Convey("Given a started service with an open session", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		defer svc.Stop(context.Background())

		info, err := svc.OpenSession(ctx, "cardiology")
		So(err, ShouldBeNil)

		Convey("When a view starts and ends immediately", func() {
			ack, ok := svc.RecordInteraction(ctx, info.SessionID, "ecg", "view_start")
			So(ok, ShouldBeTrue)
			So(ack.Signal, ShouldEqual, "none")

			ack, ok = svc.RecordInteraction(ctx, info.SessionID, "ecg", "view_end")

			Convey("Then the dwell should classify as a quick glance", func() {
				So(ok, ShouldBeTrue)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.Signal, ShouldEqual, "quick_glance")
			})
		})

		Convey("When a feature is scrolled past", func() {
			ack, ok := svc.RecordInteraction(ctx, info.SessionID, "imaging", "scrolled_past")

			Convey("Then the scroll-past signal should be reported", func() {
				So(ok, ShouldBeTrue)
				So(ack.Signal, ShouldEqual, "scrolled_past")
			})
		})

		Convey("When a view ends without a start", func() {
			ack, ok := svc.RecordInteraction(ctx, info.SessionID, "orders", "view_end")

			Convey("Then no signal should be produced", func() {
				So(ok, ShouldBeTrue)
				So(ack.Signal, ShouldEqual, "none")
			})
		})

		Convey("When the session is unknown", func() {
			_, ok := svc.RecordInteraction(ctx, "no-such-session", "ecg", "view_start")

			Convey("Then it should report not found", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestService_FilterSuggestions(t *testing.T) {
	Convey("Given a started service with an open session", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		defer svc.Stop(context.Background())

		info, err := svc.OpenSession(ctx, "")
		So(err, ShouldBeNil)

		high := 0.9
		low := 0.5
		items := []types.SuggestionItem{
			{ID: "s-1", Text: "review ECG", Confidence: &high},
			{ID: "s-2", Text: "check labs", Confidence: &low},
			{ID: "s-3", Text: "unscored"},
		}

		Convey("When filtering at the session's default density", func() {
			resp, ok := svc.FilterSuggestions(ctx, info.SessionID, items, "")

			Convey("Then high density should keep everything", func() {
				So(ok, ShouldBeTrue)
				So(resp.Density, ShouldEqual, "high")
				So(len(resp.Suggestions), ShouldEqual, 3)
			})
		})

		Convey("When overriding the density to low", func() {
			resp, ok := svc.FilterSuggestions(ctx, info.SessionID, items, "low")

			Convey("Then only high-confidence suggestions should remain", func() {
				So(ok, ShouldBeTrue)
				So(resp.Density, ShouldEqual, "low")
				So(len(resp.Suggestions), ShouldEqual, 1)
				So(resp.Suggestions[0].ID, ShouldEqual, "s-1")
			})
		})

		Convey("When the session is unknown", func() {
			_, ok := svc.FilterSuggestions(ctx, "no-such-session", items, "")

			Convey("Then it should report not found", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestService_SubmitFeedback(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		defer svc.Stop(context.Background())

		Convey("When submitting a valid verdict", func() {
			ok := svc.SubmitFeedback(ctx, "sug-1", "accept", "patient-9")

			Convey("Then it should be queued", func() {
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When submitting an unknown action", func() {
			ok := svc.SubmitFeedback(ctx, "sug-1", "shrug", "")

			Convey("Then it should be rejected", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should return basic stats", func() {
				So(stats, ShouldNotBeNil)
				So(stats["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		_, err := svc.OpenSession(ctx, "nursing")
		So(err, ShouldBeNil)

		Convey("When getting stats", func() {
			stats := svc.GetStats()

			Convey("Then it should include live counters", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["sessions_active"], ShouldEqual, 1)
				So(stats, ShouldContainKey, "queue_length")
				So(stats, ShouldContainKey, "patient_plans_cached")
			})
		})
	})
}
