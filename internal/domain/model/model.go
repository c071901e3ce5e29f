// Package model contains domain models passed between layers.
package model

import "time"

// Size classes ordered from smallest to largest.
const (
	SizeMicro      = "micro"
	SizeSmall      = "small"
	SizeMedium     = "medium"
	SizeLarge      = "large"
	SizeEnterprise = "enterprise"
)

// SizeClasses lists the known size classes in ascending order.
var SizeClasses = []string{SizeMicro, SizeSmall, SizeMedium, SizeLarge, SizeEnterprise}

// SizeIndex returns the ordinal position of a size class, or -1 when unknown.
func SizeIndex(class string) int {
	for i, c := range SizeClasses {
		if c == class {
			return i
		}
	}
	return -1
}

// ValidRange bounds the values a metric may take.
type ValidRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies in the closed range.
func (r ValidRange) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// MetricDefinition describes one measurable performance dimension.
type MetricDefinition struct {
	Key        string     `json:"key"`
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	ValidRange ValidRange `json:"valid_range"`
}

// OrganizationProfile captures the characteristics used for peer matching.
type OrganizationProfile struct {
	OrganizationID   string   `json:"organization_id" yaml:"organization_id"`
	Sector           string   `json:"sector" yaml:"sector"`
	SizeClass        string   `json:"size_class" yaml:"size_class"`
	Geography        string   `json:"geography" yaml:"geography"`
	ProgramTypes     []string `json:"program_types" yaml:"program_types"`
	AnnualBudget     *float64 `json:"annual_budget,omitempty" yaml:"annual_budget,omitempty"`
	BeneficiaryCount *int     `json:"beneficiary_count,omitempty" yaml:"beneficiary_count,omitempty"`
}

// OrganizationMetrics holds an organization's scores keyed by metric.
type OrganizationMetrics struct {
	Scores          map[string]float64 `json:"scores" yaml:"scores"`
	PreviousScores  map[string]float64 `json:"previous_scores,omitempty" yaml:"previous_scores,omitempty"`
	LastMeasurement time.Time          `json:"last_measurement" yaml:"last_measurement"`
	DataQuality     float64            `json:"data_quality" yaml:"data_quality"`
}

// Candidate is one organization in the candidate peer pool.
type Candidate struct {
	Profile OrganizationProfile `json:"profile" yaml:"profile"`
	Metrics OrganizationMetrics `json:"metrics" yaml:"metrics"`
}

// MatchCriteria narrows cohort selection. Zero values fall back to matcher defaults.
type MatchCriteria struct {
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty" yaml:"similarity_threshold,omitempty"`
	MaxPeers            int      `json:"max_peers,omitempty" yaml:"max_peers,omitempty"`
	MinPeers            int      `json:"min_peers,omitempty" yaml:"min_peers,omitempty"`
}

// Importance levels for peer characteristics.
const (
	ImportanceCritical = "critical"
	ImportanceHigh     = "high"
	ImportanceMedium   = "medium"
	ImportanceLow      = "low"
)

// Match types for peer characteristics.
const (
	MatchExact   = "exact"
	MatchRange   = "range"
	MatchOverlap = "overlap"
)

// PeerCharacteristic records how one dimension contributed to matching.
type PeerCharacteristic struct {
	Dimension  string  `json:"dimension"`
	Value      string  `json:"value"`
	Weight     float64 `json:"weight"`
	MatchType  string  `json:"match_type"`
	Importance string  `json:"importance"`
}

// PeerOrganizationSummary describes one cohort member.
type PeerOrganizationSummary struct {
	OrganizationID    string             `json:"organization_id"`
	Sector            string             `json:"sector"`
	SizeClass         string             `json:"size_class"`
	Geography         string             `json:"geography"`
	SimilarityScore   float64            `json:"similarity_score"`
	MatchedDimensions []string           `json:"matched_dimensions"`
	Scores            map[string]float64 `json:"scores,omitempty"`
}

// Percentiles holds the cohort percentile bands for a metric.
type Percentiles struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// Trend directions.
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// MetricStatistics summarizes a cohort's distribution for one metric.
type MetricStatistics struct {
	Metric            string      `json:"metric"`
	Average           float64     `json:"average"`
	Median            float64     `json:"median"`
	StandardDeviation float64     `json:"standard_deviation"`
	Min               float64     `json:"min"`
	Max               float64     `json:"max"`
	Percentiles       Percentiles `json:"percentiles"`
	TrendDirection    string      `json:"trend_direction"`
	SampleSize        int         `json:"sample_size"`
}

// PeerGroup is the cohort assembled for one benchmarking request.
type PeerGroup struct {
	ID                 string                    `json:"id"`
	OrganizationID     string                    `json:"organization_id"`
	Characteristics    []PeerCharacteristic      `json:"characteristics"`
	OrganizationCount  int                       `json:"organization_count"`
	PerformanceMetrics []MetricStatistics        `json:"performance_metrics"`
	Members            []PeerOrganizationSummary `json:"members"`
	LastUpdated        time.Time                 `json:"last_updated"`
}

// Statistic returns the statistics for a metric.
func (g *PeerGroup) Statistic(metric string) (MetricStatistics, bool) {
	for _, s := range g.PerformanceMetrics {
		if s.Metric == metric {
			return s, true
		}
	}
	return MetricStatistics{}, false
}

// Significance tiers, highest first.
const (
	TierMajorAdvantage = "major_advantage"
	TierAdvantage      = "advantage"
	TierCompetitive    = "competitive"
	TierBehind         = "behind"
	TierMajorGap       = "major_gap"
)

// ComparisonContext carries the cohort facts behind a comparison.
type ComparisonContext struct {
	SampleSize        int     `json:"sample_size"`
	TopQuartile       float64 `json:"top_quartile"`
	StandardDeviation float64 `json:"standard_deviation"`
	ZScore            float64 `json:"z_score"`
}

// MetricComparison compares one organization score against its cohort.
type MetricComparison struct {
	Metric            string            `json:"metric"`
	Category          string            `json:"category"`
	OrganizationScore float64           `json:"organization_score"`
	PeerAverage       float64           `json:"peer_average"`
	PeerMedian        float64           `json:"peer_median"`
	PercentileRank    float64           `json:"percentile_rank" validate:"min=0,max=100"`
	Gap               float64           `json:"gap"`
	SignificanceTier  string            `json:"significance_tier" validate:"oneof=major_advantage advantage competitive behind major_gap"`
	Context           ComparisonContext `json:"context"`
}

// Ranking tiers, highest first.
const (
	RankTopPerformer      = "top_performer"
	RankAboveAverage      = "above_average"
	RankAverage           = "average"
	RankBelowAverage      = "below_average"
	RankImprovementNeeded = "improvement_needed"
)

// Movement directions and significance.
const (
	MovementUp              = "up"
	MovementDown            = "down"
	MovementStable          = "stable"
	SignificanceNone        = "none"
	SignificanceMinor       = "minor"
	SignificanceSignificant = "significant"
)

// CategoryOverall labels the ranking that spans every compared metric.
const CategoryOverall = "overall"

// Movement describes rank change against a previous snapshot.
type Movement struct {
	Direction    string `json:"direction"`
	Positions    int    `json:"positions"`
	Significance string `json:"significance"`
}

// Ranking is an ordinal standing within the cohort for a category.
type Ranking struct {
	Category           string   `json:"category"`
	Rank               int      `json:"rank"`
	TotalOrganizations int      `json:"total_organizations"`
	Percentile         float64  `json:"percentile" validate:"min=0,max=100"`
	Tier               string   `json:"tier" validate:"omitempty,oneof=top_performer above_average average below_average improvement_needed"`
	Movement           Movement `json:"movement"`
}

// Gap classification values.
const (
	GapTypeProcess = "process"
	GapTypeSkill   = "skill"
	GapTypeSystem  = "system"
	GapTypeCulture = "culture"

	UrgencyImmediate = "immediate"
	UrgencyNearTerm  = "near_term"
	UrgencyLongTerm  = "long_term"

	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"

	AddressEasy      = "easy"
	AddressModerate  = "moderate"
	AddressDifficult = "difficult"
)

// PerformanceGap is a metric where the organization trails its peers.
type PerformanceGap struct {
	Metric         string  `json:"metric"`
	Category       string  `json:"category"`
	CurrentScore   float64 `json:"current_score"`
	PeerAverage    float64 `json:"peer_average"`
	TopQuartile    float64 `json:"top_quartile"`
	Magnitude      float64 `json:"magnitude"`
	Tier           string  `json:"tier" validate:"omitempty,oneof=behind major_gap"`
	GapType        string  `json:"gap_type"`
	Urgency        string  `json:"urgency" validate:"oneof=immediate near_term long_term"`
	Impact         string  `json:"impact" validate:"oneof=high medium low"`
	Addressability string  `json:"addressability" validate:"oneof=easy moderate difficult"`
}

// GapPriority ranks a gap for remediation.
type GapPriority struct {
	GapMetric        string   `json:"gap_metric"`
	PriorityScore    float64  `json:"priority_score"`
	CurrentScore     float64  `json:"current_score"`
	Magnitude        float64  `json:"magnitude"`
	Urgency          string   `json:"urgency" validate:"oneof=immediate near_term long_term"`
	Impact           string   `json:"impact" validate:"oneof=high medium low"`
	Addressability   string   `json:"addressability" validate:"oneof=easy moderate difficult"`
	QuickWins        []string `json:"quick_wins"`
	StrategicActions []string `json:"strategic_actions"`
	Timeframe        string   `json:"timeframe"`
}

// Objective is a target for one metric within a phase.
type Objective struct {
	Metric      string  `json:"metric"`
	TargetScore float64 `json:"target_score"`
}

// Resources estimates the effort of a phase.
type Resources struct {
	StaffHours int `json:"staff_hours"`
	GapCount   int `json:"gap_count"`
}

// ImprovementPhase groups gaps addressed together.
type ImprovementPhase struct {
	Number        int         `json:"number"`
	Name          string      `json:"name"`
	Focus         string      `json:"focus"`
	DurationWeeks int         `json:"duration_weeks"`
	Objectives    []Objective `json:"objectives"`
	Activities    []string    `json:"activities"`
	Milestones    []string    `json:"milestones"`
	Resources     Resources   `json:"resources"`
}

// ProjectedOutcome is the expected effect of closing a gap.
type ProjectedOutcome struct {
	Metric         string  `json:"metric"`
	CurrentScore   float64 `json:"current_score"`
	ProjectedScore float64 `json:"projected_score"`
	Improvement    float64 `json:"improvement"`
	Confidence     float64 `json:"confidence"`
	Timeframe      string  `json:"timeframe"`
}

// ImprovementPlan is the phased remediation plan.
type ImprovementPlan struct {
	Phases             []ImprovementPhase `json:"phases"`
	ProjectedOutcomes  []ProjectedOutcome `json:"projected_outcomes"`
	TotalDurationWeeks int                `json:"total_duration_weeks"`
}

// Insight kinds.
const (
	InsightStrength    = "strength"
	InsightOpportunity = "opportunity"
)

// Insight is a strength or opportunity surfaced from comparisons.
type Insight struct {
	Kind           string  `json:"kind"`
	Metric         string  `json:"metric"`
	Category       string  `json:"category"`
	Tier           string  `json:"tier"`
	PercentileRank float64 `json:"percentile_rank"`
	Gap            float64 `json:"gap"`
	Headline       string  `json:"headline"`
}

// PeerExample points at a cohort member worth learning from.
type PeerExample struct {
	OrganizationID string  `json:"organization_id"`
	Score          float64 `json:"score"`
}

// Recommendation pairs an opportunity with actions and peer examples.
type Recommendation struct {
	Metric       string        `json:"metric"`
	Priority     string        `json:"priority"`
	Actions      []string      `json:"actions"`
	PeerExamples []PeerExample `json:"peer_examples,omitempty"`
}

// Composition is the output of the insight composer.
type Composition struct {
	Insights        []Insight        `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Report is the complete benchmarking result for one organization.
type Report struct {
	ID              string             `json:"id"`
	OrganizationID  string             `json:"organization_id"`
	GeneratedAt     time.Time          `json:"generated_at"`
	PeerGroup       PeerGroup          `json:"peer_group"`
	Comparisons     []MetricComparison `json:"comparisons"`
	Rankings        []Ranking          `json:"rankings"`
	Gaps            []PerformanceGap   `json:"gaps"`
	Priorities      []GapPriority      `json:"priorities"`
	Plan            ImprovementPlan    `json:"plan"`
	Insights        []Insight          `json:"insights"`
	Recommendations []Recommendation   `json:"recommendations"`
}
