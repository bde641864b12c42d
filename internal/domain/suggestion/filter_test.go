package suggestion_test

import (
	"testing"

	"github.com/medvane/wardboard/internal/domain/model"
	"github.com/medvane/wardboard/internal/domain/suggestion"
	. "github.com/smartystreets/goconvey/convey"
)

func conf(v float64) *float64 { return &v }

func sampleSuggestions() []model.Suggestion {
	return []model.Suggestion{
		{ID: "s1", Text: "Review potassium trend", Confidence: conf(0.92)},
		{ID: "s2", Text: "Consider renal dosing", Confidence: conf(0.70)},
		{ID: "s3", Text: "Possible drug interaction", Confidence: conf(0.55)},
		{ID: "s4", Text: "Screening due", Confidence: conf(0.40)},
		{ID: "s5", Text: "Low-certainty pattern", Confidence: conf(0.1)},
		{ID: "s6", Text: "Unscored note"},
		{ID: "s7", Text: "Corrupt score", Confidence: conf(1.7)},
	}
}

func idsOf(items []model.Suggestion) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}

func TestFilterByDensity(t *testing.T) {
	Convey("Given a suggestion list with mixed confidences", t, func() {
		items := sampleSuggestions()

		Convey("When the density is low", func() {
			kept := suggestion.Filter(items, model.DensityLow)

			Convey("Then only confident items at or above 0.7 survive", func() {
				So(idsOf(kept), ShouldResemble, []string{"s1", "s2"})
			})
		})

		Convey("When the density is medium", func() {
			kept := suggestion.Filter(items, model.DensityMedium)

			Convey("Then the threshold relaxes to 0.4", func() {
				So(idsOf(kept), ShouldResemble, []string{"s1", "s2", "s3", "s4"})
			})
		})

		Convey("When the density is high", func() {
			kept := suggestion.Filter(items, model.DensityHigh)

			Convey("Then everything survives, including unscored items", func() {
				So(idsOf(kept), ShouldResemble, idsOf(items))
			})
		})

		Convey("And nil-confidence items never survive low or medium", func() {
			for _, d := range []model.Density{model.DensityLow, model.DensityMedium} {
				for _, s := range suggestion.Filter(items, d) {
					So(s.Confidence, ShouldNotBeNil)
				}
			}
		})

		Convey("And out-of-range confidences count as unscored", func() {
			low := suggestion.Filter(items, model.DensityLow)
			So(idsOf(low), ShouldNotContain, "s7")

			high := suggestion.Filter(items, model.DensityHigh)
			So(idsOf(high), ShouldContain, "s7")
		})
	})
}

func TestFilterMonotonicity(t *testing.T) {
	Convey("Given any suggestion list", t, func() {
		lists := [][]model.Suggestion{
			nil,
			{},
			sampleSuggestions(),
			{{ID: "only", Confidence: conf(0.4)}},
			{{ID: "edge", Confidence: conf(0.7)}, {ID: "zero", Confidence: conf(0)}},
		}

		Convey("Then low ⊆ medium ⊆ high holds", func() {
			for _, items := range lists {
				low := suggestion.Filter(items, model.DensityLow)
				medium := suggestion.Filter(items, model.DensityMedium)
				high := suggestion.Filter(items, model.DensityHigh)

				So(len(low), ShouldBeLessThanOrEqualTo, len(medium))
				So(len(medium), ShouldBeLessThanOrEqualTo, len(high))

				inMedium := make(map[string]bool, len(medium))
				for _, s := range medium {
					inMedium[s.ID] = true
				}
				for _, s := range low {
					So(inMedium[s.ID], ShouldBeTrue)
				}
			}
		})
	})
}

func TestFilterPurity(t *testing.T) {
	Convey("Given a filter call", t, func() {
		items := sampleSuggestions()
		kept := suggestion.Filter(items, model.DensityLow)

		Convey("Then the input is untouched", func() {
			So(items, ShouldResemble, sampleSuggestions())
		})

		Convey("And the result is a fresh slice", func() {
			So(len(kept), ShouldEqual, 2)
			kept[0].ID = "mutated"
			So(items[0].ID, ShouldEqual, "s1")
		})

		Convey("And boundary confidences are inclusive", func() {
			exactly := []model.Suggestion{
				{ID: "at_low", Confidence: conf(0.7)},
				{ID: "at_medium", Confidence: conf(0.4)},
			}
			So(idsOf(suggestion.Filter(exactly, model.DensityLow)), ShouldResemble, []string{"at_low"})
			So(idsOf(suggestion.Filter(exactly, model.DensityMedium)), ShouldResemble, []string{"at_low", "at_medium"})
		})
	})
}
