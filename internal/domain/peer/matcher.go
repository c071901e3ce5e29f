// Package peer selects a cohort of comparable organizations and summarizes
// their performance.
package peer

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/internal/domain/model"
	"github.com/okian/peerbench/internal/domain/stats"
)

// groupNamespace scopes peer group identifiers.
var groupNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("peerbench/peer-group"))

// Matcher builds peer groups from a candidate pool. It is immutable after
// construction and safe for concurrent use.
type Matcher struct {
	catalog         *catalog.Catalog
	weights         Weights
	minPeers        int
	maxPeers        int
	budgetTolerance float64
	now             func() time.Time
}

// NewMatcher creates a matcher over the given catalog.
func NewMatcher(c *catalog.Catalog, opts ...Option) *Matcher {
	m := &Matcher{
		catalog:         c,
		weights:         DefaultWeights(),
		minPeers:        defaultMinPeers,
		maxPeers:        defaultMaxPeers,
		budgetTolerance: defaultBudgetTolerance,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type scored struct {
	candidate model.Candidate
	score     float64
	matched   []string
}

// FindPeerGroup selects the cohort for an organization and computes the
// cohort statistics for every catalog metric reported by a member.
// criteria may be nil. The pool is never modified.
func (m *Matcher) FindPeerGroup(organizationID string, profile model.OrganizationProfile, pool []model.Candidate, criteria *model.MatchCriteria) (model.PeerGroup, error) {
	if err := m.validateProfile(organizationID, profile); err != nil {
		return model.PeerGroup{}, err
	}
	threshold, minPeers, maxPeers, err := m.resolve(criteria)
	if err != nil {
		return model.PeerGroup{}, err
	}

	dims := m.dimensions()
	seen := make(map[string]struct{}, len(pool))
	others := 0
	matches := make([]scored, 0, len(pool))
	for _, c := range pool {
		id := c.Profile.OrganizationID
		if id == "" || id == organizationID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		others++

		s, ok := score(dims, profile, c.Profile)
		if !ok || s.score < threshold {
			continue
		}
		s.candidate = c
		matches = append(matches, s)
	}
	if others == 0 {
		return model.PeerGroup{}, &model.InsufficientCohortError{Have: 0, Need: minPeers}
	}

	slices.SortFunc(matches, func(a, b scored) int {
		if a.score != b.score {
			if a.score > b.score {
				return -1
			}
			return 1
		}
		return strings.Compare(a.candidate.Profile.OrganizationID, b.candidate.Profile.OrganizationID)
	})
	if len(matches) > maxPeers {
		matches = matches[:maxPeers]
	}
	if len(matches) < minPeers {
		return model.PeerGroup{}, &model.InsufficientCohortError{Have: len(matches), Need: minPeers}
	}

	return model.PeerGroup{
		ID:                 groupID(organizationID, matches),
		OrganizationID:     organizationID,
		Characteristics:    characteristics(dims, profile),
		OrganizationCount:  len(matches),
		PerformanceMetrics: m.statistics(matches),
		Members:            members(matches),
		LastUpdated:        m.now().UTC(),
	}, nil
}

func (m *Matcher) validateProfile(organizationID string, p model.OrganizationProfile) error {
	switch {
	case strings.TrimSpace(organizationID) == "":
		return &model.InvalidProfileError{Field: "organization_id", Value: organizationID}
	case p.OrganizationID != "" && p.OrganizationID != organizationID:
		return &model.InvalidProfileError{Field: "organization_id", Value: p.OrganizationID}
	case !m.catalog.HasSector(p.Sector):
		return &model.InvalidProfileError{Field: "sector", Value: p.Sector}
	case model.SizeIndex(p.SizeClass) < 0:
		return &model.InvalidProfileError{Field: "size_class", Value: p.SizeClass}
	case strings.TrimSpace(p.Geography) == "":
		return &model.InvalidProfileError{Field: "geography", Value: p.Geography}
	}
	if p.AnnualBudget != nil && *p.AnnualBudget < 0 {
		return &model.InvalidRangeError{Field: "annual_budget", Value: *p.AnnualBudget, Min: 0, Max: math.Inf(1)}
	}
	if p.BeneficiaryCount != nil && *p.BeneficiaryCount < 0 {
		return &model.InvalidRangeError{Field: "beneficiary_count", Value: float64(*p.BeneficiaryCount), Min: 0, Max: math.Inf(1)}
	}
	return nil
}

func (m *Matcher) resolve(c *model.MatchCriteria) (threshold float64, minPeers, maxPeers int, err error) {
	minPeers, maxPeers = m.minPeers, m.maxPeers
	if c == nil {
		return 0, minPeers, maxPeers, nil
	}
	if c.SimilarityThreshold != nil {
		threshold = *c.SimilarityThreshold
		if threshold < 0 || threshold > 100 || math.IsNaN(threshold) {
			return 0, 0, 0, &model.InvalidRangeError{Field: "similarity_threshold", Value: threshold, Min: 0, Max: 100}
		}
	}
	if c.MinPeers < 0 {
		return 0, 0, 0, &model.InvalidRangeError{Field: "min_peers", Value: float64(c.MinPeers), Min: 1, Max: math.Inf(1)}
	}
	if c.MaxPeers < 0 {
		return 0, 0, 0, &model.InvalidRangeError{Field: "max_peers", Value: float64(c.MaxPeers), Min: 1, Max: math.Inf(1)}
	}
	if c.MinPeers > 0 {
		minPeers = c.MinPeers
	}
	if c.MaxPeers > 0 {
		maxPeers = c.MaxPeers
	}
	if maxPeers < minPeers {
		return 0, 0, 0, &model.InvalidRangeError{Field: "max_peers", Value: float64(maxPeers), Min: float64(minPeers), Max: math.Inf(1)}
	}
	return threshold, minPeers, maxPeers, nil
}

// score returns the weighted similarity in [0,100]. ok is false when a
// critical dimension does not match.
func score(dims []dimension, subject, candidate model.OrganizationProfile) (scored, bool) {
	var s scored
	for _, d := range dims {
		strength := d.strength(subject, candidate)
		if strength == 0 && d.importance == model.ImportanceCritical {
			return scored{}, false
		}
		if strength > 0 {
			s.matched = append(s.matched, d.name)
		}
		s.score += d.weight * strength
	}
	s.score = math.Min(100, s.score*100)
	return s, true
}

func characteristics(dims []dimension, p model.OrganizationProfile) []model.PeerCharacteristic {
	out := make([]model.PeerCharacteristic, 0, len(dims))
	for _, d := range dims {
		out = append(out, model.PeerCharacteristic{
			Dimension:  d.name,
			Value:      d.value(p),
			Weight:     d.weight,
			MatchType:  d.matchType,
			Importance: d.importance,
		})
	}
	return out
}

func members(matches []scored) []model.PeerOrganizationSummary {
	out := make([]model.PeerOrganizationSummary, 0, len(matches))
	for _, s := range matches {
		p := s.candidate.Profile
		scores := make(map[string]float64, len(s.candidate.Metrics.Scores))
		for k, v := range s.candidate.Metrics.Scores {
			scores[k] = v
		}
		out = append(out, model.PeerOrganizationSummary{
			OrganizationID:    p.OrganizationID,
			Sector:            p.Sector,
			SizeClass:         p.SizeClass,
			Geography:         p.Geography,
			SimilarityScore:   s.score,
			MatchedDimensions: s.matched,
			Scores:            scores,
		})
	}
	return out
}

func (m *Matcher) statistics(matches []scored) []model.MetricStatistics {
	var out []model.MetricStatistics
	for _, key := range m.catalog.Keys() {
		var values, changes []float64
		for _, s := range matches {
			v, ok := s.candidate.Metrics.Scores[key]
			if !ok {
				continue
			}
			values = append(values, v)
			if prev, ok := s.candidate.Metrics.PreviousScores[key]; ok {
				changes = append(changes, v-prev)
			}
		}
		if len(values) == 0 {
			continue
		}
		out = append(out, stats.Summarize(key, values, changes))
	}
	return out
}

func groupID(organizationID string, matches []scored) string {
	var b strings.Builder
	b.WriteString(organizationID)
	for _, s := range matches {
		b.WriteByte(0)
		b.WriteString(s.candidate.Profile.OrganizationID)
	}
	return uuid.NewSHA1(groupNamespace, []byte(b.String())).String()
}
