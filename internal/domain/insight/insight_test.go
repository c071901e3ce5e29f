package insight_test

import (
	"testing"

	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/internal/domain/insight"
	"github.com/okian/peerbench/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func mc(metric, category, tier string, percentile, score, gap float64) model.MetricComparison {
	return model.MetricComparison{
		Metric:            metric,
		Category:          category,
		SignificanceTier:  tier,
		PercentileRank:    percentile,
		OrganizationScore: score,
		Gap:               gap,
	}
}

func TestCompose(t *testing.T) {
	Convey("Given comparisons across tiers", t, func() {
		c := insight.NewComposer(catalog.Default())
		comps := []model.MetricComparison{
			mc("program_effectiveness", "impact", model.TierAdvantage, 80, 82, 10),
			mc("beneficiary_satisfaction", "impact", model.TierMajorAdvantage, 96, 95, 20),
			mc("data_quality", "measurement", model.TierMajorGap, 4, 30, -40),
			mc("reporting_timeliness", "measurement", model.TierBehind, 18, 55, -12),
			mc("staff_retention", "organizational", model.TierCompetitive, 50, 70, 0),
		}
		rankings := []model.Ranking{{Category: "measurement", Rank: 18, TotalOrganizations: 20}}

		out := c.Compose(comps, rankings)

		Convey("Then strengths come first, strongest first", func() {
			So(len(out.Insights), ShouldEqual, 4)
			So(out.Insights[0].Kind, ShouldEqual, model.InsightStrength)
			So(out.Insights[0].Metric, ShouldEqual, "beneficiary_satisfaction")
			So(out.Insights[1].Metric, ShouldEqual, "program_effectiveness")
		})

		Convey("Then opportunities follow, weakest first", func() {
			So(out.Insights[2].Kind, ShouldEqual, model.InsightOpportunity)
			So(out.Insights[2].Metric, ShouldEqual, "data_quality")
			So(out.Insights[3].Metric, ShouldEqual, "reporting_timeliness")
		})

		Convey("Then headlines fill their templates", func() {
			So(out.Insights[0].Headline, ShouldEqual, "Beneficiary satisfaction sits at the 96th percentile of peers")
			So(out.Insights[1].Headline, ShouldEqual, "Program Effectiveness is a strength at the 80th percentile of peers")
			So(out.Insights[2].Headline, ShouldEqual,
				"Data Quality trails the peer average by 40.0 points at the 4th percentile (measurement rank 18 of 20)")
		})

		Convey("Then each opportunity has a recommendation", func() {
			So(len(out.Recommendations), ShouldEqual, 2)
			So(out.Recommendations[0].Metric, ShouldEqual, "data_quality")
			So(out.Recommendations[0].Priority, ShouldEqual, "high")
			So(out.Recommendations[0].Actions, ShouldContain, "standardize_intake_forms")
			So(out.Recommendations[0].Actions, ShouldContain, "implement_central_data_system")
			So(out.Recommendations[1].Priority, ShouldEqual, "medium")
			So(out.Recommendations[0].PeerExamples, ShouldBeEmpty)
		})

		Convey("When a peer group is supplied", func() {
			g := model.PeerGroup{Members: []model.PeerOrganizationSummary{
				{OrganizationID: "p1", Scores: map[string]float64{"data_quality": 90}},
				{OrganizationID: "p2", Scores: map[string]float64{"data_quality": 75}},
				{OrganizationID: "p3", Scores: map[string]float64{"data_quality": 90}},
				{OrganizationID: "p4", Scores: map[string]float64{"data_quality": 20}},
				{OrganizationID: "p5", Scores: map[string]float64{"data_quality": 60}},
				{OrganizationID: "p6", Scores: map[string]float64{}},
			}}
			out := c.Compose(comps, rankings, insight.WithPeerGroup(g))

			Convey("Then the top performers become examples", func() {
				ex := out.Recommendations[0].PeerExamples
				So(ex, ShouldResemble, []model.PeerExample{
					{OrganizationID: "p1", Score: 90},
					{OrganizationID: "p3", Score: 90},
					{OrganizationID: "p2", Score: 75},
				})
			})

			Convey("Then the example count can be capped", func() {
				out := c.Compose(comps, rankings, insight.WithPeerGroup(g), insight.WithMaxPeerExamples(1))
				So(len(out.Recommendations[0].PeerExamples), ShouldEqual, 1)
			})
		})
	})

	Convey("Given only competitive comparisons", t, func() {
		c := insight.NewComposer(catalog.Default())
		out := c.Compose([]model.MetricComparison{mc("staff_retention", "organizational", model.TierCompetitive, 50, 70, 0)}, nil)
		So(out.Insights, ShouldBeEmpty)
		So(out.Recommendations, ShouldBeEmpty)
	})
}
