// Package stats computes cohort summary statistics for a single metric.
package stats

import (
	"math"
	"slices"

	"github.com/okian/peerbench/internal/domain/model"
)

// trendThreshold is the mean period-over-period change, in points, needed
// before a cohort is reported as improving or declining.
const trendThreshold = 1.0

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// Percentile returns the p-th quantile (0..1) of an ascending slice, linearly
// interpolating between the order statistics at (n-1)*p.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n == 1 || p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// Summarize builds the statistics for one metric. values holds the current
// cohort scores; changes holds current-minus-previous deltas for the members
// that reported a prior period, and may be empty.
func Summarize(metric string, values, changes []float64) model.MetricStatistics {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s := model.MetricStatistics{
		Metric:            metric,
		Average:           Mean(sorted),
		Median:            Percentile(sorted, 0.5),
		StandardDeviation: StdDev(sorted),
		Percentiles: model.Percentiles{
			P10: Percentile(sorted, 0.10),
			P25: Percentile(sorted, 0.25),
			P50: Percentile(sorted, 0.50),
			P75: Percentile(sorted, 0.75),
			P90: Percentile(sorted, 0.90),
		},
		TrendDirection: Trend(changes),
		SampleSize:     len(sorted),
	}
	if len(sorted) > 0 {
		s.Min = sorted[0]
		s.Max = sorted[len(sorted)-1]
	}
	return s
}

// Trend classifies the mean period-over-period change of a cohort.
func Trend(changes []float64) string {
	if len(changes) == 0 {
		return model.TrendStable
	}
	delta := Mean(changes)
	switch {
	case delta > trendThreshold:
		return model.TrendImproving
	case delta < -trendThreshold:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}
