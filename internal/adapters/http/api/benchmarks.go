package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/peerbench/internal/domain/benchmark"
	"github.com/okian/peerbench/pkg/logger"
)

// BenchmarksHandler serves full reports, batches and asynchronous jobs.
type BenchmarksHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewBenchmarksHandler creates a new benchmarks handler.
func NewBenchmarksHandler(deps Dependencies, l logger.Logger) *BenchmarksHandler {
	return &BenchmarksHandler{deps: deps, logger: l}
}

// HandleReport handles POST /v1/benchmarks.
func (h *BenchmarksHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.report"
	var req benchmarkRequest
	if err := decode(w, r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	report, err := h.deps.BuildReport(r.Context(), req.toRequest())
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleBatch handles POST /v1/benchmarks/batch.
func (h *BenchmarksHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.batch"
	var req batchRequest
	if err := decode(w, r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	reqs := make([]benchmark.Request, len(req.Requests))
	for i := range req.Requests {
		reqs[i] = req.Requests[i].toRequest()
	}
	reports, err := h.deps.BuildReports(r.Context(), reqs)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Reports: reports})
}

// HandleSubmitJob handles POST /v1/benchmarks/jobs.
func (h *BenchmarksHandler) HandleSubmitJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_job"
	var req benchmarkRequest
	if err := decode(w, r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	j, err := h.deps.SubmitJob(r.Context(), req.toRequest())
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	w.Header().Set("Location", "/v1/benchmarks/jobs/"+j.ID)
	writeJSON(w, http.StatusAccepted, j)
}

// HandleGetJob handles GET /v1/benchmarks/jobs/{id}.
func (h *BenchmarksHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.deps.Job(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}
