// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/okian/peerbench/internal/domain/benchmark"
	"github.com/okian/peerbench/internal/domain/job"
	"github.com/okian/peerbench/internal/domain/model"
	"github.com/okian/peerbench/pkg/logger"
)

const maxBodyBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	Catalog() []model.MetricDefinition
	Sectors() []string

	FindPeerGroup(ctx context.Context, organizationID string, profile model.OrganizationProfile, pool []model.Candidate, criteria *model.MatchCriteria) (model.PeerGroup, error)
	CompareToPeerGroup(ctx context.Context, scores model.OrganizationMetrics, group model.PeerGroup, filter []string) ([]model.MetricComparison, error)
	Rank(ctx context.Context, comparisons []model.MetricComparison, previous []model.Ranking) []model.Ranking
	AnalyzeGaps(ctx context.Context, comparisons []model.MetricComparison) []model.PerformanceGap
	PrioritizeGaps(ctx context.Context, gaps []model.PerformanceGap) []model.GapPriority
	BuildImprovementPlan(ctx context.Context, priorities []model.GapPriority) model.ImprovementPlan
	ComposeInsights(ctx context.Context, comparisons []model.MetricComparison, rankings []model.Ranking, group *model.PeerGroup) model.Composition

	BuildReport(ctx context.Context, req benchmark.Request) (model.Report, error)
	BuildReports(ctx context.Context, reqs []benchmark.Request) ([]model.Report, error)
	SubmitJob(ctx context.Context, req benchmark.Request) (job.Job, error)
	Job(ctx context.Context, id string) (job.Job, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	operationsHandler *OperationsHandler
	benchmarksHandler *BenchmarksHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	l := logger.Get().Named("api")
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		operationsHandler: NewOperationsHandler(deps, l),
		benchmarksHandler: NewBenchmarksHandler(deps, l),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(middleware.RequestID, middleware.Recoverer, MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", s.operationsHandler.HandleCatalog)
		r.Post("/peer-groups", s.operationsHandler.HandlePeerGroup)
		r.Post("/comparisons", s.operationsHandler.HandleComparisons)
		r.Post("/rankings", s.operationsHandler.HandleRankings)
		r.Post("/gaps", s.operationsHandler.HandleGaps)
		r.Post("/gaps/priorities", s.operationsHandler.HandlePriorities)
		r.Post("/plans", s.operationsHandler.HandlePlan)
		r.Post("/insights", s.operationsHandler.HandleInsights)

		r.Post("/benchmarks", s.benchmarksHandler.HandleReport)
		r.Post("/benchmarks/batch", s.benchmarksHandler.HandleBatch)
		r.Post("/benchmarks/jobs", s.benchmarksHandler.HandleSubmitJob)
		r.Get("/benchmarks/jobs/{id}", s.benchmarksHandler.HandleGetJob)
	})
}

// Routes returns a router with every API route registered.
func (s *Server) Routes(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}

// decode reads a JSON body into v and validates it.
func decode(w http.ResponseWriter, r *http.Request, op string, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest(op, err)
	}
	if err := validate.Struct(v); err != nil {
		return badRequest(op, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(ctx context.Context, w http.ResponseWriter, l logger.Logger, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed", logger.Error(err))
	}
	msg := http.StatusText(status)
	if err != nil && status != http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
