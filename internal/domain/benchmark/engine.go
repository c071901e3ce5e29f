// Package benchmark chains the benchmarking components into a single report
// pipeline.
package benchmark

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/internal/domain/comparison"
	"github.com/okian/peerbench/internal/domain/gap"
	"github.com/okian/peerbench/internal/domain/insight"
	"github.com/okian/peerbench/internal/domain/model"
	"github.com/okian/peerbench/internal/domain/peer"
	"github.com/okian/peerbench/internal/domain/plan"
	"github.com/okian/peerbench/internal/domain/ranking"
)

var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("peerbench/report"))

// Request is the input to a full benchmarking run.
type Request struct {
	RequestID        string                    `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	OrganizationID   string                    `json:"organization_id" yaml:"organization_id"`
	Profile          model.OrganizationProfile `json:"profile" yaml:"profile"`
	Metrics          model.OrganizationMetrics `json:"metrics" yaml:"metrics"`
	Candidates       []model.Candidate         `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Criteria         *model.MatchCriteria      `json:"criteria,omitempty" yaml:"criteria,omitempty"`
	MetricFilter     []string                  `json:"metric_filter,omitempty" yaml:"metric_filter,omitempty"`
	PreviousRankings []model.Ranking           `json:"previous_rankings,omitempty" yaml:"previous_rankings,omitempty"`
}

// Engine runs the benchmarking pipeline. It is immutable after construction
// and safe for concurrent use.
type Engine struct {
	catalog  *catalog.Catalog
	matcher  *peer.Matcher
	compare  *comparison.Engine
	gaps     *gap.Analyzer
	planner  *plan.Planner
	composer *insight.Composer
	now      func() time.Time
}

// NewEngine builds an engine over the given catalog.
func NewEngine(c *catalog.Catalog, opts ...Option) *Engine {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	peerOpts := append([]peer.Option{peer.WithClock(s.now)}, s.peer...)
	return &Engine{
		catalog:  c,
		matcher:  peer.NewMatcher(c, peerOpts...),
		compare:  comparison.New(c),
		gaps:     gap.NewAnalyzer(c, s.gap...),
		planner:  plan.NewPlanner(c, s.plan...),
		composer: insight.NewComposer(c),
		now:      s.now,
	}
}

// Catalog returns the metric catalog the engine was built with.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// FindPeerGroup selects and summarizes the peer cohort.
func (e *Engine) FindPeerGroup(organizationID string, profile model.OrganizationProfile, pool []model.Candidate, criteria *model.MatchCriteria) (model.PeerGroup, error) {
	return e.matcher.FindPeerGroup(organizationID, profile, pool, criteria)
}

// Compare positions the organization's scores within the peer group.
func (e *Engine) Compare(metrics model.OrganizationMetrics, group model.PeerGroup, filter []string) ([]model.MetricComparison, error) {
	return e.compare.Compare(metrics, group, filter)
}

// Rank derives category and overall standings.
func (e *Engine) Rank(comparisons []model.MetricComparison, previous []model.Ranking) []model.Ranking {
	return ranking.Rank(comparisons, previous)
}

// AnalyzeGaps extracts underperforming metrics.
func (e *Engine) AnalyzeGaps(comparisons []model.MetricComparison) []model.PerformanceGap {
	return e.gaps.AnalyzeGaps(comparisons)
}

// Prioritize orders gaps for remediation.
func (e *Engine) Prioritize(gaps []model.PerformanceGap) []model.GapPriority {
	return e.gaps.Prioritize(gaps)
}

// Plan builds the phased improvement plan.
func (e *Engine) Plan(priorities []model.GapPriority) model.ImprovementPlan {
	return e.planner.Plan(priorities)
}

// Compose builds insights and recommendations.
func (e *Engine) Compose(comparisons []model.MetricComparison, rankings []model.Ranking, opts ...insight.Option) model.Composition {
	return e.composer.Compose(comparisons, rankings, opts...)
}

// Run executes the full pipeline. Any component error fails the request and
// no partial report is returned.
func (e *Engine) Run(req Request) (model.Report, error) {
	group, err := e.FindPeerGroup(req.OrganizationID, req.Profile, req.Candidates, req.Criteria)
	if err != nil {
		return model.Report{}, err
	}
	comparisons, err := e.Compare(req.Metrics, group, req.MetricFilter)
	if err != nil {
		return model.Report{}, err
	}
	rankings := e.Rank(comparisons, req.PreviousRankings)
	gaps := e.AnalyzeGaps(comparisons)
	priorities := e.Prioritize(gaps)
	composition := e.Compose(comparisons, rankings, insight.WithPeerGroup(group))

	return model.Report{
		ID:              ReportID(req, group.ID),
		OrganizationID:  req.OrganizationID,
		GeneratedAt:     e.now().UTC(),
		PeerGroup:       group,
		Comparisons:     comparisons,
		Rankings:        rankings,
		Gaps:            gaps,
		Priorities:      priorities,
		Plan:            e.Plan(priorities),
		Insights:        composition.Insights,
		Recommendations: composition.Recommendations,
	}, nil
}

// ReportID derives a stable report identifier from the request id, or from
// the organization and peer group when no request id is set.
func ReportID(req Request, groupID string) string {
	name := req.RequestID
	if name == "" {
		name = req.OrganizationID + "/" + groupID
	}
	return uuid.NewSHA1(reportNamespace, []byte(name)).String()
}
