package model_test

import (
	"testing"
	"time"

	"github.com/medvane/wardboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseSize(t *testing.T) {
	Convey("Given size strings from a plan payload", t, func() {
		Convey("Then known sizes parse to themselves", func() {
			So(model.ParseSize("small"), ShouldEqual, model.SizeSmall)
			So(model.ParseSize("medium"), ShouldEqual, model.SizeMedium)
			So(model.ParseSize("large"), ShouldEqual, model.SizeLarge)
		})

		Convey("And case and whitespace are tolerated", func() {
			So(model.ParseSize(" Large "), ShouldEqual, model.SizeLarge)
			So(model.ParseSize("SMALL"), ShouldEqual, model.SizeSmall)
		})

		Convey("And unknown values default to medium", func() {
			So(model.ParseSize("huge"), ShouldEqual, model.SizeMedium)
			So(model.ParseSize(""), ShouldEqual, model.SizeMedium)
		})
	})
}

func TestParseDensity(t *testing.T) {
	Convey("Given density strings from a plan payload", t, func() {
		Convey("Then known densities parse and report ok", func() {
			for _, s := range []string{"low", "medium", "high"} {
				d, ok := model.ParseDensity(s)
				So(ok, ShouldBeTrue)
				So(string(d), ShouldEqual, s)
			}
		})

		Convey("And unknown densities report not ok", func() {
			_, ok := model.ParseDensity("max")
			So(ok, ShouldBeFalse)

			_, ok = model.ParseDensity("")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestParseFeedbackAction(t *testing.T) {
	Convey("Given feedback action strings", t, func() {
		Convey("Then the three known actions parse", func() {
			a, ok := model.ParseFeedbackAction("accept")
			So(ok, ShouldBeTrue)
			So(a, ShouldEqual, model.ActionAccept)

			a, ok = model.ParseFeedbackAction("IGNORE")
			So(ok, ShouldBeTrue)
			So(a, ShouldEqual, model.ActionIgnore)

			a, ok = model.ParseFeedbackAction("not_relevant")
			So(ok, ShouldBeTrue)
			So(a, ShouldEqual, model.ActionNotRelevant)
		})

		Convey("And anything else is rejected", func() {
			_, ok := model.ParseFeedbackAction("dismiss")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestLayoutResult(t *testing.T) {
	Convey("Given a merged layout", t, func() {
		result := model.LayoutResult{
			Visible: []model.Placement{
				{Section: model.Section{ID: "vitals", Label: "Vital Signs"}, Size: model.SizeLarge},
				{Section: model.Section{ID: "lab_results", Label: "Lab Results"}, Size: model.SizeMedium},
			},
			Hidden: []model.Section{
				{ID: "ecg", Label: "ECG"},
			},
		}

		Convey("Then Order lists visible ids in display order", func() {
			So(result.Order(), ShouldResemble, []string{"vitals", "lab_results"})
		})

		Convey("And Contains finds sections in both halves", func() {
			So(result.Contains("vitals"), ShouldBeTrue)
			So(result.Contains("ecg"), ShouldBeTrue)
			So(result.Contains("imaging"), ShouldBeFalse)
		})
	})
}

func TestOutboundConstructors(t *testing.T) {
	Convey("Given outbound payloads", t, func() {
		Convey("Then a signal wraps with the signal kind", func() {
			sig := model.FeedbackSignal{
				ID:        "sig-1",
				FeatureID: "vitals",
				Kind:      model.SignalQuickGlance,
				Success:   true,
				Weight:    1.0,
				Dwell:     2 * time.Second,
				At:        time.Now(),
			}
			out := model.NewOutboundSignal(sig)
			So(out.Kind, ShouldEqual, model.OutboundSignal)
			So(out.Signal.FeatureID, ShouldEqual, "vitals")
		})

		Convey("Then a navigation event wraps with the navigation kind", func() {
			out := model.NewOutboundNavigation(model.NavigationEvent{ToSection: "imaging"})
			So(out.Kind, ShouldEqual, model.OutboundNavigation)
			So(out.Navigation.ToSection, ShouldEqual, "imaging")
		})

		Convey("Then a suggestion verdict wraps with the suggestion kind", func() {
			out := model.NewOutboundSuggestion(model.SuggestionFeedback{
				SuggestionID: "sug-9",
				Action:       model.ActionAccept,
			})
			So(out.Kind, ShouldEqual, model.OutboundSuggestion)
			So(out.Suggestion.SuggestionID, ShouldEqual, "sug-9")
		})
	})
}
