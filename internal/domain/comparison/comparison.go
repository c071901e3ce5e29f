// Package comparison positions an organization's scores within its peer
// cohort distribution.
package comparison

import (
	"math"
	"slices"
	"strings"

	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/internal/domain/model"
)

// Tier boundaries on the percentile scale, lower bound inclusive.
const (
	majorAdvantageFloor = 90
	advantageFloor      = 75
	competitiveFloor    = 25
	behindFloor         = 10
)

// Engine compares organization metrics against a peer group.
type Engine struct {
	catalog *catalog.Catalog
}

// New creates a comparison engine over the given catalog.
func New(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Compare produces one comparison per requested metric in catalog order.
// With an empty filter every metric the organization reports is compared.
// A requested metric missing from the catalog, the organization's scores or
// the peer statistics fails the whole call.
func (e *Engine) Compare(metrics model.OrganizationMetrics, group model.PeerGroup, filter []string) ([]model.MetricComparison, error) {
	if !(model.ValidRange{Min: 0, Max: 100}).Contains(metrics.DataQuality) {
		return nil, &model.InvalidRangeError{Field: "data_quality", Value: metrics.DataQuality, Min: 0, Max: 100}
	}

	requested := e.requested(metrics, filter)
	out := make([]model.MetricComparison, 0, len(requested))
	for _, key := range requested {
		def, ok := e.catalog.Metric(key)
		if !ok {
			return nil, &model.MetricNotFoundError{Metric: key, Reason: "not defined in catalog"}
		}
		score, ok := metrics.Scores[key]
		if !ok {
			return nil, &model.MetricNotFoundError{Metric: key, Reason: "no organization score"}
		}
		if math.IsNaN(score) || !def.ValidRange.Contains(score) {
			return nil, &model.InvalidRangeError{Field: "scores." + key, Value: score, Min: def.ValidRange.Min, Max: def.ValidRange.Max}
		}
		st, ok := group.Statistic(key)
		if !ok || st.SampleSize == 0 {
			return nil, &model.MetricNotFoundError{Metric: key, Reason: "no peer statistics"}
		}
		out = append(out, compareOne(def, score, st))
	}
	return out, nil
}

// requested returns the distinct metric keys to compare, ordered by catalog
// position and then by name.
func (e *Engine) requested(metrics model.OrganizationMetrics, filter []string) []string {
	var keys []string
	if len(filter) > 0 {
		keys = slices.Clone(filter)
	} else {
		keys = make([]string, 0, len(metrics.Scores))
		for k := range metrics.Scores {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		if oa, ob := e.catalog.Order(a), e.catalog.Order(b); oa != ob {
			return oa - ob
		}
		return strings.Compare(a, b)
	})
	return slices.Compact(keys)
}

func compareOne(def model.MetricDefinition, score float64, st model.MetricStatistics) model.MetricComparison {
	pr := PercentileRank(score, st)
	var z float64
	if st.StandardDeviation > 0 {
		z = (score - st.Average) / st.StandardDeviation
	}
	return model.MetricComparison{
		Metric:            def.Key,
		Category:          def.Category,
		OrganizationScore: score,
		PeerAverage:       st.Average,
		PeerMedian:        st.Median,
		PercentileRank:    pr,
		Gap:               score - st.Average,
		SignificanceTier:  Tier(pr),
		Context: model.ComparisonContext{
			SampleSize:        st.SampleSize,
			TopQuartile:       st.Percentiles.P75,
			StandardDeviation: st.StandardDeviation,
			ZScore:            z,
		},
	}
}

type anchor struct {
	value      float64
	percentile float64
}

// PercentileRank places a score on the cohort's percentile scale by linear
// interpolation between the cohort extremes and percentile bands. A score
// equal to several coincident bands takes the midpoint of their percentiles.
// The result lies in [0,100] and never decreases as score increases.
func PercentileRank(score float64, st model.MetricStatistics) float64 {
	anchors := [...]anchor{
		{st.Min, 0},
		{st.Percentiles.P10, 10},
		{st.Percentiles.P25, 25},
		{st.Percentiles.P50, 50},
		{st.Percentiles.P75, 75},
		{st.Percentiles.P90, 90},
		{st.Max, 100},
	}
	last := len(anchors) - 1
	switch {
	case score < anchors[0].value:
		return 0
	case score > anchors[last].value:
		return 100
	}

	first, end := -1, -1
	for i, a := range anchors {
		if a.value == score {
			if first < 0 {
				first = i
			}
			end = i
		}
	}
	if first >= 0 {
		return clamp((anchors[first].percentile + anchors[end].percentile) / 2)
	}

	for i := 0; i < last; i++ {
		lo, hi := anchors[i], anchors[i+1]
		if score > lo.value && score < hi.value {
			frac := (score - lo.value) / (hi.value - lo.value)
			return clamp(lo.percentile + frac*(hi.percentile-lo.percentile))
		}
	}
	// Unreachable for well-ordered statistics.
	return 50
}

// Tier maps a percentile rank to its significance tier.
func Tier(percentile float64) string {
	switch {
	case percentile >= majorAdvantageFloor:
		return model.TierMajorAdvantage
	case percentile >= advantageFloor:
		return model.TierAdvantage
	case percentile >= competitiveFloor:
		return model.TierCompetitive
	case percentile >= behindFloor:
		return model.TierBehind
	default:
		return model.TierMajorGap
	}
}

func clamp(p float64) float64 {
	return math.Max(0, math.Min(100, p))
}
