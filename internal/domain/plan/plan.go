// Package plan turns prioritized gaps into a phased improvement plan with
// projected outcomes.
package plan

import (
	"math"

	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/internal/domain/model"
)

// Phase names.
const (
	PhaseQuickWins = "quick_wins"
	PhaseStrategic = "strategic"
)

// Planner builds improvement plans.
type Planner struct {
	catalog     *catalog.Catalog
	projections Projections
	heuristics  Heuristics
}

// NewPlanner creates a planner over the given catalog.
func NewPlanner(c *catalog.Catalog, opts ...Option) *Planner {
	p := &Planner{
		catalog:     c,
		projections: DefaultProjections(),
		heuristics:  DefaultHeuristics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan splits priorities into a quick-wins phase (immediate or easy gaps)
// and a strategic phase (the rest). Empty phases are omitted, so no
// priorities yields a plan with zero phases.
func (p *Planner) Plan(priorities []model.GapPriority) model.ImprovementPlan {
	var quick, strategic []model.GapPriority
	for _, g := range priorities {
		if g.Urgency == model.UrgencyImmediate || g.Addressability == model.AddressEasy {
			quick = append(quick, g)
		} else {
			strategic = append(strategic, g)
		}
	}

	plan := model.ImprovementPlan{
		Phases:            []model.ImprovementPhase{},
		ProjectedOutcomes: make([]model.ProjectedOutcome, 0, len(priorities)),
	}
	if len(quick) > 0 {
		plan.Phases = append(plan.Phases, p.phase(len(plan.Phases)+1, PhaseQuickWins,
			"close immediate and easily addressable gaps", p.heuristics.QuickWinBaseWeeks, quick, true))
	}
	if len(strategic) > 0 {
		plan.Phases = append(plan.Phases, p.phase(len(plan.Phases)+1, PhaseStrategic,
			"build capability for structural gaps", p.heuristics.StrategicBaseWeeks, strategic, false))
	}
	for _, ph := range plan.Phases {
		plan.TotalDurationWeeks += ph.DurationWeeks
	}
	for _, g := range priorities {
		plan.ProjectedOutcomes = append(plan.ProjectedOutcomes, p.project(g))
	}
	return plan
}

func (p *Planner) phase(number int, name, focus string, baseWeeks int, gaps []model.GapPriority, quickWins bool) model.ImprovementPhase {
	ph := model.ImprovementPhase{
		Number:        number,
		Name:          name,
		Focus:         focus,
		DurationWeeks: baseWeeks,
		Objectives:    make([]model.Objective, 0, len(gaps)),
		Activities:    []string{},
		Milestones:    []string{"baseline_confirmed"},
		Resources:     model.Resources{GapCount: len(gaps)},
	}
	seen := map[string]bool{}
	for _, g := range gaps {
		ph.DurationWeeks += pick(p.heuristics.WeeksPerGap, g.Addressability)
		ph.Resources.StaffHours += pick(p.heuristics.StaffHoursPerGap, g.Addressability)
		ph.Objectives = append(ph.Objectives, model.Objective{
			Metric:      g.GapMetric,
			TargetScore: p.project(g).ProjectedScore,
		})
		actions := g.StrategicActions
		if quickWins {
			actions = g.QuickWins
		}
		for _, a := range actions {
			if !seen[a] {
				seen[a] = true
				ph.Activities = append(ph.Activities, a)
			}
		}
		ph.Milestones = append(ph.Milestones, g.GapMetric+"_target_met")
	}
	ph.Milestones = append(ph.Milestones, name+"_review")
	return ph
}

func (p *Planner) project(g model.GapPriority) model.ProjectedOutcome {
	proj := p.projection(g.Addressability)
	ceiling := 100.0
	if def, ok := p.catalog.Metric(g.GapMetric); ok {
		ceiling = def.ValidRange.Max
	}
	projected := math.Min(g.CurrentScore+proj.Improvement, ceiling)
	projected = math.Max(projected, g.CurrentScore)
	return model.ProjectedOutcome{
		Metric:         g.GapMetric,
		CurrentScore:   g.CurrentScore,
		ProjectedScore: projected,
		Improvement:    projected - g.CurrentScore,
		Confidence:     proj.Confidence,
		Timeframe:      g.Timeframe,
	}
}

func (p *Planner) projection(addressability string) Projection {
	switch addressability {
	case model.AddressEasy:
		return p.projections.Easy
	case model.AddressDifficult:
		return p.projections.Difficult
	default:
		return p.projections.Moderate
	}
}

func pick(e Effort, addressability string) int {
	switch addressability {
	case model.AddressEasy:
		return e.Easy
	case model.AddressDifficult:
		return e.Difficult
	default:
		return e.Moderate
	}
}
