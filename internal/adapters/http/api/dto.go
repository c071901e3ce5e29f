package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/okian/peerbench/internal/domain/benchmark"
	"github.com/okian/peerbench/internal/domain/comparison"
	"github.com/okian/peerbench/internal/domain/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateComparison, model.MetricComparison{})
	return v
}

// validateComparison rejects a significance tier that disagrees with the
// percentile rank it was derived from.
func validateComparison(sl validator.StructLevel) {
	c, ok := sl.Current().Interface().(model.MetricComparison)
	if !ok {
		return
	}
	if c.SignificanceTier != comparison.Tier(c.PercentileRank) {
		sl.ReportError(c.SignificanceTier, "SignificanceTier", "significance_tier", "tier_matches_percentile", "")
	}
}

type peerGroupRequest struct {
	OrganizationID string                    `json:"organization_id" validate:"required,max=128"`
	Profile        model.OrganizationProfile `json:"profile"`
	Candidates     []model.Candidate         `json:"candidates,omitempty"`
	Criteria       *model.MatchCriteria      `json:"criteria,omitempty"`
}

type comparisonRequest struct {
	Metrics      model.OrganizationMetrics `json:"metrics"`
	PeerGroup    model.PeerGroup           `json:"peer_group"`
	MetricFilter []string                  `json:"metric_filter,omitempty" validate:"omitempty,dive,required"`
}

type rankingRequest struct {
	Comparisons      []model.MetricComparison `json:"comparisons" validate:"dive"`
	PreviousRankings []model.Ranking          `json:"previous_rankings,omitempty" validate:"dive"`
}

type gapsRequest struct {
	Comparisons []model.MetricComparison `json:"comparisons" validate:"dive"`
}

type prioritiesRequest struct {
	Gaps []model.PerformanceGap `json:"gaps" validate:"dive"`
}

type planRequest struct {
	Priorities []model.GapPriority `json:"priorities" validate:"dive"`
}

type insightsRequest struct {
	Comparisons []model.MetricComparison `json:"comparisons" validate:"dive"`
	Rankings    []model.Ranking          `json:"rankings,omitempty" validate:"dive"`
	PeerGroup   *model.PeerGroup         `json:"peer_group,omitempty"`
}

type benchmarkRequest struct {
	RequestID        string                    `json:"request_id,omitempty" validate:"omitempty,max=128,printascii"`
	OrganizationID   string                    `json:"organization_id" validate:"required,max=128"`
	Profile          model.OrganizationProfile `json:"profile"`
	Metrics          model.OrganizationMetrics `json:"metrics"`
	Candidates       []model.Candidate         `json:"candidates,omitempty"`
	Criteria         *model.MatchCriteria      `json:"criteria,omitempty"`
	MetricFilter     []string                  `json:"metric_filter,omitempty" validate:"omitempty,dive,required"`
	PreviousRankings []model.Ranking           `json:"previous_rankings,omitempty" validate:"dive"`
}

func (b *benchmarkRequest) toRequest() benchmark.Request {
	return benchmark.Request{
		RequestID:        b.RequestID,
		OrganizationID:   b.OrganizationID,
		Profile:          b.Profile,
		Metrics:          b.Metrics,
		Candidates:       b.Candidates,
		Criteria:         b.Criteria,
		MetricFilter:     b.MetricFilter,
		PreviousRankings: b.PreviousRankings,
	}
}

type batchRequest struct {
	Requests []benchmarkRequest `json:"requests" validate:"required,min=1,max=100,dive"`
}

type batchResponse struct {
	Reports []model.Report `json:"reports"`
}

type catalogResponse struct {
	Metrics []model.MetricDefinition `json:"metrics"`
	Sectors []string                 `json:"sectors"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
