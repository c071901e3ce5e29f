package api

import (
	"net/http"

	"github.com/okian/peerbench/pkg/logger"
)

// OperationsHandler exposes each benchmarking step on its own.
type OperationsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewOperationsHandler creates a new operations handler.
func NewOperationsHandler(deps Dependencies, l logger.Logger) *OperationsHandler {
	return &OperationsHandler{deps: deps, logger: l}
}

// HandleCatalog handles GET /v1/catalog.
func (h *OperationsHandler) HandleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{Metrics: h.deps.Catalog(), Sectors: h.deps.Sectors()})
}

// HandlePeerGroup handles POST /v1/peer-groups.
func (h *OperationsHandler) HandlePeerGroup(w http.ResponseWriter, r *http.Request) {
	const op = "api.peer_group"
	var req peerGroupRequest
	if err := decode(w, r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	group, err := h.deps.FindPeerGroup(r.Context(), req.OrganizationID, req.Profile, req.Candidates, req.Criteria)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// HandleComparisons handles POST /v1/comparisons.
func (h *OperationsHandler) HandleComparisons(w http.ResponseWriter, r *http.Request) {
	const op = "api.comparisons"
	var req comparisonRequest
	if err := decode(w, r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	out, err := h.deps.CompareToPeerGroup(r.Context(), req.Metrics, req.PeerGroup, req.MetricFilter)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleRankings handles POST /v1/rankings.
func (h *OperationsHandler) HandleRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.rankings"
	var req rankingRequest
	if err := decode(w, r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Rank(r.Context(), req.Comparisons, req.PreviousRankings))
}

// HandleGaps handles POST /v1/gaps.
func (h *OperationsHandler) HandleGaps(w http.ResponseWriter, r *http.Request) {
	const op = "api.gaps"
	var req gapsRequest
	if err := decode(w, r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.AnalyzeGaps(r.Context(), req.Comparisons))
}

// HandlePriorities handles POST /v1/gaps/priorities.
func (h *OperationsHandler) HandlePriorities(w http.ResponseWriter, r *http.Request) {
	const op = "api.priorities"
	var req prioritiesRequest
	if err := decode(w, r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.PrioritizeGaps(r.Context(), req.Gaps))
}

// HandlePlan handles POST /v1/plans.
func (h *OperationsHandler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	const op = "api.plan"
	var req planRequest
	if err := decode(w, r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.BuildImprovementPlan(r.Context(), req.Priorities))
}

// HandleInsights handles POST /v1/insights.
func (h *OperationsHandler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	const op = "api.insights"
	var req insightsRequest
	if err := decode(w, r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ComposeInsights(r.Context(), req.Comparisons, req.Rankings, req.PeerGroup))
}
