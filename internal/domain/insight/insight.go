// Package insight assembles strength and opportunity insights and
// recommendations from comparison results.
package insight

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/internal/domain/model"
)

const defaultPeerExamples = 3

const (
	strengthTemplate    = "{name} is a strength at the {percentile} percentile of peers"
	opportunityTemplate = "{name} trails the peer average by {gap} points at the {percentile} percentile"
	rankingSuffix       = " ({category} rank {rank} of {total})"
)

// Composer builds insights. It holds no per-request state.
type Composer struct {
	catalog *catalog.Catalog
}

// NewComposer creates a composer over the given catalog.
func NewComposer(c *catalog.Catalog) *Composer {
	return &Composer{catalog: c}
}

type composeConfig struct {
	group       *model.PeerGroup
	maxExamples int
}

// Option configures a single Compose call.
type Option func(*composeConfig)

// WithPeerGroup attaches peer-learning examples drawn from the cohort.
func WithPeerGroup(g model.PeerGroup) Option {
	return func(c *composeConfig) { c.group = &g }
}

// WithMaxPeerExamples caps the peer examples per recommendation.
func WithMaxPeerExamples(n int) Option {
	return func(c *composeConfig) {
		if n > 0 {
			c.maxExamples = n
		}
	}
}

// Compose selects strengths (advantage tiers, strongest first) and
// opportunities (gap tiers, weakest first) and pairs each opportunity with a
// recommendation.
func (c *Composer) Compose(comparisons []model.MetricComparison, rankings []model.Ranking, opts ...Option) model.Composition {
	cfg := composeConfig{maxExamples: defaultPeerExamples}
	for _, opt := range opts {
		opt(&cfg)
	}
	byCategory := make(map[string]model.Ranking, len(rankings))
	for _, r := range rankings {
		byCategory[r.Category] = r
	}

	var strengths, opportunities []model.MetricComparison
	for _, m := range comparisons {
		switch m.SignificanceTier {
		case model.TierAdvantage, model.TierMajorAdvantage:
			strengths = append(strengths, m)
		case model.TierBehind, model.TierMajorGap:
			opportunities = append(opportunities, m)
		}
	}
	slices.SortStableFunc(strengths, func(a, b model.MetricComparison) int { return byPercentile(b, a) })
	slices.SortStableFunc(opportunities, byPercentile)

	out := model.Composition{
		Insights:        make([]model.Insight, 0, len(strengths)+len(opportunities)),
		Recommendations: make([]model.Recommendation, 0, len(opportunities)),
	}
	for _, m := range strengths {
		out.Insights = append(out.Insights, c.insight(model.InsightStrength, m, byCategory))
	}
	for _, m := range opportunities {
		out.Insights = append(out.Insights, c.insight(model.InsightOpportunity, m, byCategory))
		out.Recommendations = append(out.Recommendations, c.recommend(m, cfg))
	}
	return out
}

func byPercentile(a, b model.MetricComparison) int {
	switch {
	case a.PercentileRank < b.PercentileRank:
		return -1
	case a.PercentileRank > b.PercentileRank:
		return 1
	}
	return strings.Compare(a.Metric, b.Metric)
}

func (c *Composer) insight(kind string, m model.MetricComparison, rankings map[string]model.Ranking) model.Insight {
	return model.Insight{
		Kind:           kind,
		Metric:         m.Metric,
		Category:       m.Category,
		Tier:           m.SignificanceTier,
		PercentileRank: m.PercentileRank,
		Gap:            m.Gap,
		Headline:       c.headline(kind, m, rankings),
	}
}

func (c *Composer) headline(kind string, m model.MetricComparison, rankings map[string]model.Ranking) string {
	tmpl := c.catalog.Headline(m.Metric)
	if tmpl == "" {
		tmpl = strengthTemplate
		if kind == model.InsightOpportunity {
			tmpl = opportunityTemplate
		}
	}
	name := m.Metric
	if def, ok := c.catalog.Metric(m.Metric); ok && def.Name != "" {
		name = def.Name
	}
	vars := []string{
		"{name}", name,
		"{metric}", m.Metric,
		"{percentile}", ordinal(m.PercentileRank),
		"{gap}", fmt.Sprintf("%.1f", abs(m.Gap)),
		"{category}", m.Category,
	}
	if r, ok := rankings[m.Category]; ok {
		tmpl += rankingSuffix
		vars = append(vars, "{rank}", strconv.Itoa(r.Rank), "{total}", strconv.Itoa(r.TotalOrganizations))
	}
	return strings.NewReplacer(vars...).Replace(tmpl)
}

func (c *Composer) recommend(m model.MetricComparison, cfg composeConfig) model.Recommendation {
	priority := "medium"
	if m.SignificanceTier == model.TierMajorGap {
		priority = "high"
	}
	quick, strategic := c.catalog.Actions(m.Metric)
	r := model.Recommendation{
		Metric:   m.Metric,
		Priority: priority,
		Actions:  append(quick, strategic...),
	}
	if cfg.group != nil {
		r.PeerExamples = examples(*cfg.group, m, cfg.maxExamples)
	}
	return r
}

// examples returns the highest scoring cohort members that outperform the
// organization on the metric.
func examples(g model.PeerGroup, m model.MetricComparison, limit int) []model.PeerExample {
	var out []model.PeerExample
	for _, mem := range g.Members {
		if s, ok := mem.Scores[m.Metric]; ok && s > m.OrganizationScore {
			out = append(out, model.PeerExample{OrganizationID: mem.OrganizationID, Score: s})
		}
	}
	slices.SortFunc(out, func(a, b model.PeerExample) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return strings.Compare(a.OrganizationID, b.OrganizationID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func ordinal(p float64) string {
	n := int(p + 0.5)
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
