// Package gap extracts underperforming metrics from comparisons and ranks
// them for remediation.
package gap

import (
	"math"
	"slices"
	"strings"

	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/internal/domain/model"
)

// Impact thresholds on the absolute gap, in points.
const (
	highImpactGap   = 15
	mediumImpactGap = 8
)

var (
	urgencyLevel = map[string]float64{
		model.UrgencyImmediate: 3,
		model.UrgencyNearTerm:  2,
		model.UrgencyLongTerm:  1,
	}
	impactLevel = map[string]float64{
		model.ImpactHigh:   3,
		model.ImpactMedium: 2,
		model.ImpactLow:    1,
	}
	addressLevel = map[string]float64{
		model.AddressEasy:      3,
		model.AddressModerate:  2,
		model.AddressDifficult: 1,
	}
	timeframes = map[string]string{
		model.AddressEasy:      "1-3 months",
		model.AddressModerate:  "3-6 months",
		model.AddressDifficult: "6-12 months",
	}
)

// Analyzer classifies and prioritizes performance gaps.
type Analyzer struct {
	catalog *catalog.Catalog
	weights Weights
}

// NewAnalyzer creates an analyzer over the given catalog.
func NewAnalyzer(c *catalog.Catalog, opts ...Option) *Analyzer {
	a := &Analyzer{catalog: c, weights: DefaultWeights()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeGaps returns a gap for every comparison in the behind or major gap
// tiers, preserving input order.
func (a *Analyzer) AnalyzeGaps(comparisons []model.MetricComparison) []model.PerformanceGap {
	out := []model.PerformanceGap{}
	for _, c := range comparisons {
		if c.SignificanceTier != model.TierBehind && c.SignificanceTier != model.TierMajorGap {
			continue
		}
		magnitude := math.Abs(c.Gap)
		urgency := model.UrgencyNearTerm
		if c.SignificanceTier == model.TierMajorGap {
			urgency = model.UrgencyImmediate
		}
		out = append(out, model.PerformanceGap{
			Metric:         c.Metric,
			Category:       c.Category,
			CurrentScore:   c.OrganizationScore,
			PeerAverage:    c.PeerAverage,
			TopQuartile:    c.Context.TopQuartile,
			Magnitude:      magnitude,
			Tier:           c.SignificanceTier,
			GapType:        a.catalog.GapType(c.Metric),
			Urgency:        urgency,
			Impact:         impactFor(magnitude),
			Addressability: a.catalog.Addressability(c.Metric),
		})
	}
	return out
}

func impactFor(magnitude float64) string {
	switch {
	case magnitude > highImpactGap:
		return model.ImpactHigh
	case magnitude > mediumImpactGap:
		return model.ImpactMedium
	default:
		return model.ImpactLow
	}
}

// Score returns the weighted priority of a gap, in [1,3] for known levels.
func (a *Analyzer) Score(urgency, impact, addressability string) float64 {
	w := a.weights
	total := w.Urgency + w.Impact + w.Addressability
	return (urgencyLevel[urgency]*w.Urgency +
		impactLevel[impact]*w.Impact +
		addressLevel[addressability]*w.Addressability) / total
}

// Prioritize scores every gap and orders them by priority, then magnitude,
// then metric key.
func (a *Analyzer) Prioritize(gaps []model.PerformanceGap) []model.GapPriority {
	out := make([]model.GapPriority, 0, len(gaps))
	for _, g := range gaps {
		quick, strategic := a.catalog.Actions(g.Metric)
		out = append(out, model.GapPriority{
			GapMetric:        g.Metric,
			PriorityScore:    a.Score(g.Urgency, g.Impact, g.Addressability),
			CurrentScore:     g.CurrentScore,
			Magnitude:        g.Magnitude,
			Urgency:          g.Urgency,
			Impact:           g.Impact,
			Addressability:   g.Addressability,
			QuickWins:        quick,
			StrategicActions: strategic,
			Timeframe:        Timeframe(g.Addressability),
		})
	}
	slices.SortStableFunc(out, func(x, y model.GapPriority) int {
		switch {
		case x.PriorityScore > y.PriorityScore:
			return -1
		case x.PriorityScore < y.PriorityScore:
			return 1
		case x.Magnitude > y.Magnitude:
			return -1
		case x.Magnitude < y.Magnitude:
			return 1
		}
		return strings.Compare(x.GapMetric, y.GapMetric)
	})
	return out
}

// Timeframe maps addressability to the expected remediation window.
func Timeframe(addressability string) string {
	if t, ok := timeframes[addressability]; ok {
		return t
	}
	return timeframes[model.AddressModerate]
}
