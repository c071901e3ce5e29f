// Package ranking converts percentile positions into ordinal standings.
package ranking

import (
	"math"

	"github.com/okian/peerbench/internal/domain/model"
)

// significantShare is the fraction of the cohort a rank change must cover
// to count as significant.
const significantShare = 0.10

type bucket struct {
	category    string
	percentiles []float64
	sampleSize  int
}

// Rank produces one ranking per category present in the comparisons, in
// first-seen order, followed by an overall ranking. previous may be nil; when
// it holds a ranking for the same category, movement is reported against it.
func Rank(comparisons []model.MetricComparison, previous []model.Ranking) []model.Ranking {
	if len(comparisons) == 0 {
		return []model.Ranking{}
	}

	var buckets []*bucket
	index := map[string]*bucket{}
	overall := &bucket{category: model.CategoryOverall}
	for _, c := range comparisons {
		b, ok := index[c.Category]
		if !ok {
			b = &bucket{category: c.Category}
			index[c.Category] = b
			buckets = append(buckets, b)
		}
		for _, t := range []*bucket{b, overall} {
			t.percentiles = append(t.percentiles, c.PercentileRank)
			t.sampleSize = max(t.sampleSize, c.Context.SampleSize)
		}
	}
	buckets = append(buckets, overall)

	prev := make(map[string]model.Ranking, len(previous))
	for _, r := range previous {
		prev[r.Category] = r
	}

	out := make([]model.Ranking, 0, len(buckets))
	for _, b := range buckets {
		r := standing(b)
		if p, ok := prev[b.category]; ok {
			r.Movement = movement(p.Rank, r.Rank, r.TotalOrganizations)
		} else {
			r.Movement = model.Movement{Direction: model.MovementStable, Significance: model.SignificanceNone}
		}
		out = append(out, r)
	}
	return out
}

func standing(b *bucket) model.Ranking {
	var sum float64
	for _, p := range b.percentiles {
		sum += p
	}
	p := sum / float64(len(b.percentiles))
	total := b.sampleSize + 1
	return model.Ranking{
		Category:           b.category,
		Rank:               Position(p, total),
		TotalOrganizations: total,
		Percentile:         p,
		Tier:               Tier(p),
	}
}

// Position converts a percentile into a 1-based rank within a cohort of
// size total (the organization included).
func Position(percentile float64, total int) int {
	if total < 1 {
		return 1
	}
	r := int(math.Ceil((100 - percentile) * float64(total) / 100))
	return min(max(r, 1), total)
}

// Tier labels a percentile standing.
func Tier(percentile float64) string {
	switch {
	case percentile >= 90:
		return model.RankTopPerformer
	case percentile >= 75:
		return model.RankAboveAverage
	case percentile >= 25:
		return model.RankAverage
	case percentile >= 10:
		return model.RankBelowAverage
	default:
		return model.RankImprovementNeeded
	}
}

func movement(previousRank, rank, total int) model.Movement {
	positions := previousRank - rank
	m := model.Movement{Positions: positions}
	switch {
	case positions > 0:
		m.Direction = model.MovementUp
	case positions < 0:
		m.Direction = model.MovementDown
	default:
		m.Direction = model.MovementStable
	}
	abs := math.Abs(float64(positions))
	switch {
	case positions == 0:
		m.Significance = model.SignificanceNone
	case abs >= math.Max(1, significantShare*float64(total)):
		m.Significance = model.SignificanceSignificant
	default:
		m.Significance = model.SignificanceMinor
	}
	return m
}
