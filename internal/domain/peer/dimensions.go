package peer

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/peerbench/internal/domain/model"
)

// Dimension names.
const (
	DimSector       = "sector"
	DimSizeClass    = "size_class"
	DimGeography    = "geography"
	DimProgramTypes = "program_types"
	DimAnnualBudget = "annual_budget"
)

type dimension struct {
	name       string
	matchType  string
	importance string
	weight     float64
	value      func(model.OrganizationProfile) string
	strength   func(subject, candidate model.OrganizationProfile) float64
}

func (m *Matcher) dimensions() []dimension {
	return []dimension{
		{
			name: DimSector, matchType: model.MatchExact, importance: model.ImportanceCritical,
			weight:   m.weights.Sector,
			value:    func(p model.OrganizationProfile) string { return p.Sector },
			strength: sectorStrength,
		},
		{
			name: DimSizeClass, matchType: model.MatchRange, importance: model.ImportanceHigh,
			weight:   m.weights.SizeClass,
			value:    func(p model.OrganizationProfile) string { return p.SizeClass },
			strength: sizeStrength,
		},
		{
			name: DimGeography, matchType: model.MatchExact, importance: model.ImportanceMedium,
			weight:   m.weights.Geography,
			value:    func(p model.OrganizationProfile) string { return p.Geography },
			strength: geographyStrength,
		},
		{
			name: DimProgramTypes, matchType: model.MatchOverlap, importance: model.ImportanceHigh,
			weight:   m.weights.ProgramTypes,
			value:    func(p model.OrganizationProfile) string { return strings.Join(p.ProgramTypes, ",") },
			strength: programStrength,
		},
		{
			name: DimAnnualBudget, matchType: model.MatchRange, importance: model.ImportanceMedium,
			weight: m.weights.AnnualBudget,
			value: func(p model.OrganizationProfile) string {
				if p.AnnualBudget == nil {
					return ""
				}
				return strconv.FormatFloat(*p.AnnualBudget, 'f', -1, 64)
			},
			strength: func(s, c model.OrganizationProfile) float64 {
				return budgetStrength(s.AnnualBudget, c.AnnualBudget, m.budgetTolerance)
			},
		},
	}
}

func sectorStrength(s, c model.OrganizationProfile) float64 {
	if s.Sector != "" && s.Sector == c.Sector {
		return 1
	}
	return 0
}

func sizeStrength(s, c model.OrganizationProfile) float64 {
	a, b := model.SizeIndex(s.SizeClass), model.SizeIndex(c.SizeClass)
	if a < 0 || b < 0 {
		return 0
	}
	switch d := a - b; {
	case d == 0:
		return 1
	case d == 1 || d == -1:
		return 0.5
	default:
		return 0
	}
}

// geographyStrength matches region codes such as "US-CA"; a shared country
// prefix is a partial match.
func geographyStrength(s, c model.OrganizationProfile) float64 {
	a, b := strings.TrimSpace(s.Geography), strings.TrimSpace(c.Geography)
	if a == "" || b == "" {
		return 0
	}
	if strings.EqualFold(a, b) {
		return 1
	}
	ca, _, okA := strings.Cut(a, "-")
	cb, _, okB := strings.Cut(b, "-")
	if (okA || okB) && strings.EqualFold(ca, cb) {
		return 0.5
	}
	return 0
}

// programStrength is the Jaccard overlap of the two program type sets.
func programStrength(s, c model.OrganizationProfile) float64 {
	a := make(map[string]struct{}, len(s.ProgramTypes))
	for _, p := range s.ProgramTypes {
		a[p] = struct{}{}
	}
	b := make(map[string]struct{}, len(c.ProgramTypes))
	for _, p := range c.ProgramTypes {
		b[p] = struct{}{}
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for p := range a {
		if _, ok := b[p]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

func budgetStrength(subject, candidate *float64, tolerance float64) float64 {
	if subject == nil || candidate == nil {
		return 0
	}
	s, c := *subject, *candidate
	if s == 0 {
		if c == 0 {
			return 1
		}
		return 0
	}
	band := tolerance * math.Abs(s)
	diff := math.Abs(c - s)
	if diff > band {
		return 0
	}
	return 1 - diff/band
}
