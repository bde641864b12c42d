package layout_test

import (
	"testing"

	"github.com/medvane/wardboard/internal/domain/catalog"
	"github.com/medvane/wardboard/internal/domain/layout"
	"github.com/medvane/wardboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func twoSections() []model.Section {
	return []model.Section{
		{ID: "vitals", Label: "Vital Signs", DefaultPriority: 6, DefaultVisible: true},
		{ID: "ecg", Label: "ECG", DefaultPriority: 2, DefaultVisible: false},
	}
}

func assertPartition(sections []model.Section, result model.LayoutResult) {
	So(len(result.Visible)+len(result.Hidden), ShouldEqual, len(sections))

	seen := make(map[string]bool)
	for _, p := range result.Visible {
		So(seen[p.ID], ShouldBeFalse)
		seen[p.ID] = true
	}
	for _, s := range result.Hidden {
		So(seen[s.ID], ShouldBeFalse)
		seen[s.ID] = true
	}
	for _, s := range sections {
		So(seen[s.ID], ShouldBeTrue)
	}
}

func TestMerge_NoPlan(t *testing.T) {
	Convey("Given a catalog and no plan", t, func() {
		sections := twoSections()
		result := layout.Merge(sections, nil)

		Convey("Then default-visible sections show by default priority", func() {
			So(result.Order(), ShouldResemble, []string{"vitals"})
			So(result.Hidden[0].ID, ShouldEqual, "ecg")
		})

		Convey("And the partition is complete", func() {
			assertPartition(sections, result)
		})

		Convey("And placements default to medium", func() {
			So(result.Visible[0].Size, ShouldEqual, model.SizeMedium)
		})
	})
}

func TestMerge_PlanRanking(t *testing.T) {
	Convey("Given the catalog from the planner scenario", t, func() {
		sections := twoSections()

		Convey("When the plan ranks a hidden-by-default section first", func() {
			plan := &model.Plan{
				FeaturePriority: []model.FeatureEntry{
					{ID: "ecg", Position: 0, Size: model.SizeLarge, UsageCount: 10},
				},
			}
			result := layout.Merge(sections, plan)

			Convey("Then the planned section leads and the default follows", func() {
				So(result.Order(), ShouldResemble, []string{"ecg", "vitals"})
				So(result.Hidden, ShouldBeEmpty)
			})

			Convey("And the planned size is honored while defaults stay medium", func() {
				So(result.Visible[0].Size, ShouldEqual, model.SizeLarge)
				So(result.Visible[1].Size, ShouldEqual, model.SizeMedium)
			})

			Convey("And the partition is complete", func() {
				assertPartition(sections, result)
			})
		})

		Convey("When the plan hides a default-visible section", func() {
			plan := &model.Plan{HiddenFeatures: []string{"vitals"}}
			result := layout.Merge(sections, plan)

			Convey("Then it is excluded despite its default", func() {
				So(result.Order(), ShouldNotContain, "vitals")

				hiddenIDs := make([]string, len(result.Hidden))
				for i, s := range result.Hidden {
					hiddenIDs[i] = s.ID
				}
				So(hiddenIDs, ShouldContain, "vitals")
			})

			Convey("And the partition still covers every section", func() {
				assertPartition(sections, result)
			})
		})

		Convey("When both planned and unplanned sections are visible", func() {
			sections := []model.Section{
				{ID: "a", DefaultPriority: 9, DefaultVisible: true},
				{ID: "b", DefaultPriority: 4, DefaultVisible: true},
				{ID: "c", DefaultPriority: 7, DefaultVisible: true},
				{ID: "d", DefaultPriority: 1, DefaultVisible: false},
			}
			plan := &model.Plan{
				FeaturePriority: []model.FeatureEntry{
					{ID: "d", Position: 20},
					{ID: "b", Position: 10},
				},
			}
			result := layout.Merge(sections, plan)

			Convey("Then planned sections lead in position order", func() {
				So(result.Order(), ShouldResemble, []string{"b", "d", "a", "c"})
			})
		})
	})
}

func TestMerge_MalformedPlans(t *testing.T) {
	Convey("Given plans with malformed entries", t, func() {
		sections := twoSections()

		Convey("When the plan repeats an id", func() {
			plan := &model.Plan{
				FeaturePriority: []model.FeatureEntry{
					{ID: "ecg", Position: 5, Size: model.SizeSmall},
					{ID: "ecg", Position: 0, Size: model.SizeLarge},
				},
			}
			result := layout.Merge(sections, plan)

			Convey("Then the last occurrence wins", func() {
				So(result.Visible[0].ID, ShouldEqual, "ecg")
				So(result.Visible[0].Size, ShouldEqual, model.SizeLarge)
			})

			Convey("And the partition is complete", func() {
				assertPartition(sections, result)
			})
		})

		Convey("When the plan references unknown sections", func() {
			plan := &model.Plan{
				FeaturePriority: []model.FeatureEntry{{ID: "billing", Position: 0}},
				HiddenFeatures:  []string{"scheduling"},
			}
			result := layout.Merge(sections, plan)

			Convey("Then unknown entries are ignored and defaults apply", func() {
				So(result.Order(), ShouldResemble, []string{"vitals"})
				assertPartition(sections, result)
			})
		})

		Convey("When the catalog itself repeats an id", func() {
			dup := append(twoSections(), model.Section{ID: "vitals", DefaultPriority: 1})
			result := layout.Merge(dup, nil)

			Convey("Then the first occurrence wins and nothing repeats", func() {
				assertPartition(twoSections(), result)
			})
		})

		Convey("When the plan is empty in every field", func() {
			result := layout.Merge(sections, &model.Plan{})

			Convey("Then it behaves like no plan at all", func() {
				So(result.Order(), ShouldResemble, layout.Merge(sections, nil).Order())
			})
		})
	})
}

func TestMerge_Idempotence(t *testing.T) {
	Convey("Given identical inputs", t, func() {
		sections := catalog.Sections()
		plan := &model.Plan{
			FeaturePriority: []model.FeatureEntry{
				{ID: "ecg", Position: 0, Size: model.SizeLarge},
				{ID: "imaging", Position: 1},
			},
			HiddenFeatures: []string{"appointments"},
		}

		first := layout.Merge(sections, plan)
		second := layout.Merge(sections, plan)

		Convey("Then merge is a pure function", func() {
			So(second, ShouldResemble, first)
		})

		Convey("And the inputs were not mutated", func() {
			So(sections, ShouldResemble, catalog.Sections())
			So(plan.FeaturePriority[0].ID, ShouldEqual, "ecg")
		})
	})
}

func TestMerge_FullCatalog(t *testing.T) {
	Convey("Given the real catalog and a rich plan", t, func() {
		sections := catalog.Sections()
		plan := &model.Plan{
			FeaturePriority: []model.FeatureEntry{
				{ID: "lab_results", Position: 1, Size: model.SizeLarge, UsageCount: 120, DailyAverage: 14.5},
				{ID: "vitals", Position: 2, Size: model.SizeMedium, UsageCount: 80, DailyAverage: 9.1},
				{ID: "imaging", Position: 3, Size: model.SizeSmall, UsageCount: 22, DailyAverage: 2.0},
			},
			HiddenFeatures:    []string{"appointments", "care_plan"},
			SuggestionDensity: model.DensityMedium,
			Explanation:       "ranked by recent usage",
		}
		result := layout.Merge(sections, plan)

		Convey("Then planned sections lead in position order", func() {
			So(result.Order()[0], ShouldEqual, "lab_results")
			So(result.Order()[1], ShouldEqual, "vitals")
			So(result.Order()[2], ShouldEqual, "imaging")
		})

		Convey("And hidden features plus unplanned invisibles fill the hidden list", func() {
			hiddenIDs := make([]string, len(result.Hidden))
			for i, s := range result.Hidden {
				hiddenIDs[i] = s.ID
			}
			So(hiddenIDs, ShouldContain, "appointments")
			So(hiddenIDs, ShouldContain, "care_plan")
			So(hiddenIDs, ShouldContain, "ecg")
		})

		Convey("And the partition is complete", func() {
			assertPartition(sections, result)
		})
	})
}

func TestApplyOrder(t *testing.T) {
	Convey("Given the patient-detail order variant", t, func() {
		sections := []model.Section{
			{ID: "vitals"},
			{ID: "labs"},
			{ID: "meds"},
		}

		Convey("When the order covers a subset", func() {
			out := layout.ApplyOrder(sections, []string{"meds", "vitals"})

			Convey("Then ordered ids lead and the rest append in catalog order", func() {
				So(ids(out), ShouldResemble, []string{"meds", "vitals", "labs"})
			})
		})

		Convey("When the order has unknown and duplicate ids", func() {
			out := layout.ApplyOrder(sections, []string{"billing", "labs", "labs", "vitals"})

			Convey("Then unknowns drop and duplicates keep their first slot", func() {
				So(ids(out), ShouldResemble, []string{"labs", "vitals", "meds"})
			})
		})

		Convey("When the order is empty", func() {
			out := layout.ApplyOrder(sections, nil)

			Convey("Then the catalog order is returned unchanged", func() {
				So(ids(out), ShouldResemble, []string{"vitals", "labs", "meds"})
			})
		})
	})
}

func ids(sections []model.Section) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.ID
	}
	return out
}
