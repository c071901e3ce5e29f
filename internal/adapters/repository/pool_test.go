package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const poolYAML = `
candidates:
  - profile:
      organization_id: org-1
      sector: education
      size_class: medium
      geography: US-CA
      program_types: [tutoring]
      annual_budget: 1000000
    metrics:
      scores: {program_effectiveness: 70}
      previous_scores: {program_effectiveness: 65}
      data_quality: 80
  - profile:
      organization_id: org-2
      sector: education
      size_class: small
      geography: US-NY
    metrics:
      scores: {program_effectiveness: 55}
`

func TestStaticPool(t *testing.T) {
	ctx := context.Background()

	Convey("Given a YAML pool file", t, func() {
		path := filepath.Join(t.TempDir(), "pool.yaml")
		So(os.WriteFile(path, []byte(poolYAML), 0o600), ShouldBeNil)

		p, err := LoadStaticPool(path)
		So(err, ShouldBeNil)

		Convey("Then every candidate is decoded", func() {
			cs, err := p.Candidates(ctx)
			So(err, ShouldBeNil)
			So(len(cs), ShouldEqual, 2)
			So(cs[0].Profile.OrganizationID, ShouldEqual, "org-1")
			So(*cs[0].Profile.AnnualBudget, ShouldEqual, 1000000)
			So(cs[0].Metrics.PreviousScores["program_effectiveness"], ShouldEqual, 65)
			So(cs[1].Profile.AnnualBudget, ShouldBeNil)
		})

		Convey("Then the returned slice is a copy", func() {
			cs, _ := p.Candidates(ctx)
			cs[0].Profile.OrganizationID = "mutated"
			again, _ := p.Candidates(ctx)
			So(again[0].Profile.OrganizationID, ShouldEqual, "org-1")
		})
	})

	Convey("Given a JSON pool document", t, func() {
		doc := `{"candidates":[{"profile":{"organization_id":"org-9","sector":"health","size_class":"large","geography":"GB"},"metrics":{"scores":{"data_quality":40}}}]}`
		d, err := DecodePool(strings.NewReader(doc), "json")
		So(err, ShouldBeNil)
		So(len(d.Candidates), ShouldEqual, 1)
		So(d.Candidates[0].Metrics.Scores["data_quality"], ShouldEqual, 40)
	})

	Convey("Given malformed pool documents", t, func() {
		_, err := DecodePool(strings.NewReader("candidates: [{profile: {sector: health}}]"), "yaml")
		So(errors.Is(err, ErrLoadPool), ShouldBeTrue)

		_, err = DecodePool(strings.NewReader("{not json"), "json")
		So(errors.Is(err, ErrLoadPool), ShouldBeTrue)

		_, err = LoadStaticPool("/non/existent/pool.yaml")
		So(errors.Is(err, ErrLoadPool), ShouldBeTrue)
	})

	Convey("Given an empty document", t, func() {
		d, err := DecodePool(strings.NewReader(""), "yaml")
		So(err, ShouldBeNil)
		So(d.Candidates, ShouldBeEmpty)
	})
}

func TestAssemble(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(f float64) *float64 { return &f }
	measured := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given joined organization and metric rows", t, func() {
		rows := []poolRow{
			{ID: "b", Sector: "health", SizeClass: "small", Geography: "US", ProgramTypes: []string{"clinic"},
				DataQuality: 70, LastMeasurement: &measured, MetricKey: str("cost_efficiency"), Score: num(60), PreviousScore: num(50)},
			{ID: "b", Sector: "health", SizeClass: "small", Geography: "US",
				MetricKey: str("data_quality"), Score: num(75)},
			{ID: "a", Sector: "health", SizeClass: "large", Geography: "GB", AnnualBudget: num(2e6)},
			{ID: "c", Sector: "health", SizeClass: "small", Geography: "US", MetricKey: str("data_quality")},
		}

		cs := assemble(rows)

		Convey("Then one candidate is built per organization in row order", func() {
			So(len(cs), ShouldEqual, 3)
			So(cs[0].Profile.OrganizationID, ShouldEqual, "b")
			So(cs[1].Profile.OrganizationID, ShouldEqual, "a")
			So(cs[2].Profile.OrganizationID, ShouldEqual, "c")
		})

		Convey("Then metric rows are folded into score maps", func() {
			So(cs[0].Metrics.Scores, ShouldResemble, map[string]float64{"cost_efficiency": 60, "data_quality": 75})
			So(cs[0].Metrics.PreviousScores, ShouldResemble, map[string]float64{"cost_efficiency": 50})
			So(cs[0].Metrics.LastMeasurement, ShouldEqual, measured)
			So(cs[0].Profile.ProgramTypes, ShouldResemble, []string{"clinic"})
		})

		Convey("Then organizations without usable metrics have empty scores", func() {
			So(cs[1].Metrics.Scores, ShouldBeEmpty)
			So(*cs[1].Profile.AnnualBudget, ShouldEqual, 2e6)
			So(cs[2].Metrics.Scores, ShouldBeEmpty)
			So(cs[2].Metrics.PreviousScores, ShouldBeNil)
		})
	})

	Convey("Given no rows", t, func() {
		So(assemble(nil), ShouldNotBeNil)
		So(assemble(nil), ShouldBeEmpty)
	})
}
