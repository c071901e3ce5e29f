package plan_test

import (
	"testing"

	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/internal/domain/model"
	"github.com/okian/peerbench/internal/domain/plan"
	. "github.com/smartystreets/goconvey/convey"
)

func priority(metric, urgency, addressability string, current float64) model.GapPriority {
	return model.GapPriority{
		GapMetric:        metric,
		CurrentScore:     current,
		Urgency:          urgency,
		Addressability:   addressability,
		QuickWins:        []string{metric + "_quick"},
		StrategicActions: []string{metric + "_strategic"},
		Timeframe:        "3-6 months",
	}
}

func TestPlan(t *testing.T) {
	Convey("Given a planner with default heuristics", t, func() {
		p := plan.NewPlanner(catalog.Default())

		Convey("When there are no gaps", func() {
			out := p.Plan(nil)

			Convey("Then the plan has zero phases", func() {
				So(out.Phases, ShouldBeEmpty)
				So(out.ProjectedOutcomes, ShouldBeEmpty)
				So(out.TotalDurationWeeks, ShouldEqual, 0)
			})
		})

		Convey("When gaps span both phases", func() {
			out := p.Plan([]model.GapPriority{
				priority("data_quality", model.UrgencyImmediate, model.AddressEasy, 30),
				priority("reporting_timeliness", model.UrgencyNearTerm, model.AddressEasy, 60),
				priority("funding_diversity", model.UrgencyNearTerm, model.AddressDifficult, 40),
				priority("staff_retention", model.UrgencyNearTerm, model.AddressModerate, 50),
			})

			Convey("Then quick wins come first", func() {
				So(len(out.Phases), ShouldEqual, 2)
				q := out.Phases[0]
				So(q.Number, ShouldEqual, 1)
				So(q.Name, ShouldEqual, plan.PhaseQuickWins)
				So(q.Resources.GapCount, ShouldEqual, 2)
				So(q.DurationWeeks, ShouldEqual, 4+1+1)
				So(q.Resources.StaffHours, ShouldEqual, 40)
				So(q.Activities, ShouldResemble, []string{"data_quality_quick", "reporting_timeliness_quick"})
				So(q.Milestones[0], ShouldEqual, "baseline_confirmed")
				So(q.Milestones[len(q.Milestones)-1], ShouldEqual, "quick_wins_review")
			})

			Convey("Then strategic work follows", func() {
				s := out.Phases[1]
				So(s.Number, ShouldEqual, 2)
				So(s.Name, ShouldEqual, plan.PhaseStrategic)
				So(s.DurationWeeks, ShouldEqual, 12+4+2)
				So(s.Resources.StaffHours, ShouldEqual, 120)
				So(s.Activities, ShouldContain, "funding_diversity_strategic")
				So(out.TotalDurationWeeks, ShouldEqual, 6+18)
			})

			Convey("Then outcomes follow priority order with projection constants", func() {
				So(len(out.ProjectedOutcomes), ShouldEqual, 4)
				o := out.ProjectedOutcomes[0]
				So(o.Metric, ShouldEqual, "data_quality")
				So(o.ProjectedScore, ShouldEqual, 45)
				So(o.Improvement, ShouldEqual, 15)
				So(o.Confidence, ShouldEqual, 85)
				So(out.ProjectedOutcomes[2].Improvement, ShouldEqual, 8)
				So(out.ProjectedOutcomes[2].Confidence, ShouldEqual, 65)
				So(out.ProjectedOutcomes[3].Improvement, ShouldEqual, 12)
			})
		})

		Convey("When only strategic gaps exist", func() {
			out := p.Plan([]model.GapPriority{priority("staff_retention", model.UrgencyNearTerm, model.AddressModerate, 50)})
			So(len(out.Phases), ShouldEqual, 1)
			So(out.Phases[0].Number, ShouldEqual, 1)
			So(out.Phases[0].Name, ShouldEqual, plan.PhaseStrategic)
		})

		Convey("When a projection would exceed the metric maximum", func() {
			out := p.Plan([]model.GapPriority{priority("data_quality", model.UrgencyImmediate, model.AddressEasy, 95)})
			So(out.ProjectedOutcomes[0].ProjectedScore, ShouldEqual, 100)
			So(out.ProjectedOutcomes[0].Improvement, ShouldEqual, 5)
			So(out.Phases[0].Objectives[0].TargetScore, ShouldEqual, 100)
		})
	})

	Convey("Given custom projections and heuristics", t, func() {
		proj := plan.DefaultProjections()
		proj.Easy = plan.Projection{Improvement: 20, Confidence: 90}
		h := plan.DefaultHeuristics()
		h.QuickWinBaseWeeks = 2
		p := plan.NewPlanner(catalog.Default(), plan.WithProjections(proj), plan.WithHeuristics(h))

		out := p.Plan([]model.GapPriority{priority("data_quality", model.UrgencyImmediate, model.AddressEasy, 30)})
		So(out.ProjectedOutcomes[0].Improvement, ShouldEqual, 20)
		So(out.ProjectedOutcomes[0].Confidence, ShouldEqual, 90)
		So(out.Phases[0].DurationWeeks, ShouldEqual, 3)

		Convey("Then invalid values are ignored", func() {
			bad := plan.DefaultProjections()
			bad.Moderate.Confidence = 140
			p := plan.NewPlanner(catalog.Default(), plan.WithProjections(bad))
			out := p.Plan([]model.GapPriority{priority("staff_retention", model.UrgencyNearTerm, model.AddressModerate, 50)})
			So(out.ProjectedOutcomes[0].Confidence, ShouldEqual, 75)
		})
	})
}
