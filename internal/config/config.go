// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/peerbench/internal/domain/gap"
	"github.com/okian/peerbench/internal/domain/peer"
	"github.com/okian/peerbench/internal/domain/plan"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of job workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the request id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ReportStoreSize bounds the number of retained jobs.
	ReportStoreSize int `koanf:"report_store_size"`

	// BatchConcurrency limits parallel reports within one batch.
	BatchConcurrency int `koanf:"batch_concurrency"`

	// CatalogPath replaces the embedded metric catalog when set.
	CatalogPath string `koanf:"catalog_path"`

	// PoolFile is a YAML or JSON peer pool used when requests carry no candidates.
	PoolFile string `koanf:"pool_file"`

	// DatabaseURL points at the PostgreSQL peer pool. Takes precedence over PoolFile.
	DatabaseURL string `koanf:"database_url"`

	// PoolRefreshIntervalSec schedules pool snapshot refreshes; 0 disables them.
	PoolRefreshIntervalSec int `koanf:"pool_refresh_interval_sec"`

	MinCohortSize   int         `koanf:"min_cohort_size"`
	MaxPeers        int         `koanf:"max_peers"`
	BudgetTolerance float64     `koanf:"budget_tolerance"`
	PeerWeights     PeerWeights `koanf:"peer_weights"`
	Priority        Priority    `koanf:"priority"`
	Projection      Projection  `koanf:"projection"`
	Planning        Planning    `koanf:"planning"`
}

// PeerWeights weights the peer matching dimensions.
type PeerWeights struct {
	Sector       float64 `koanf:"sector"`
	SizeClass    float64 `koanf:"size_class"`
	Geography    float64 `koanf:"geography"`
	ProgramTypes float64 `koanf:"program_types"`
	AnnualBudget float64 `koanf:"annual_budget"`
}

// Priority weights the gap priority score, in percent.
type Priority struct {
	UrgencyWeight        float64 `koanf:"urgency_weight"`
	ImpactWeight         float64 `koanf:"impact_weight"`
	AddressabilityWeight float64 `koanf:"addressability_weight"`
}

// ProjectionLevel is the projected effect of closing one gap.
type ProjectionLevel struct {
	Improvement float64 `koanf:"improvement"`
	Confidence  float64 `koanf:"confidence"`
}

// Projection holds projections per addressability level.
type Projection struct {
	Easy      ProjectionLevel `koanf:"easy"`
	Moderate  ProjectionLevel `koanf:"moderate"`
	Difficult ProjectionLevel `koanf:"difficult"`
}

// Effort is a per-gap quantity by addressability level.
type Effort struct {
	Easy      int `koanf:"easy"`
	Moderate  int `koanf:"moderate"`
	Difficult int `koanf:"difficult"`
}

// Planning sizes improvement phases.
type Planning struct {
	QuickWinBaseWeeks  int    `koanf:"quick_win_base_weeks"`
	StrategicBaseWeeks int    `koanf:"strategic_base_weeks"`
	WeeksPerGap        Effort `koanf:"weeks_per_gap"`
	StaffHoursPerGap   Effort `koanf:"staff_hours_per_gap"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	gw := gap.DefaultWeights()
	pr := plan.DefaultProjections()
	h := plan.DefaultHeuristics()
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		QueueSize:              1024,
		WorkerCount:            runtime.NumCPU(),
		DedupeSize:             50_000,
		ReportStoreSize:        10_000,
		BatchConcurrency:       runtime.NumCPU(),
		PoolRefreshIntervalSec: 300,
		MinCohortSize:          5,
		MaxPeers:               25,
		BudgetTolerance:        0.5,
		PeerWeights: PeerWeights{
			Sector:       30,
			SizeClass:    20,
			Geography:    15,
			ProgramTypes: 20,
			AnnualBudget: 15,
		},
		Priority: Priority{
			UrgencyWeight:        gw.Urgency,
			ImpactWeight:         gw.Impact,
			AddressabilityWeight: gw.Addressability,
		},
		Projection: Projection{
			Easy:      ProjectionLevel(pr.Easy),
			Moderate:  ProjectionLevel(pr.Moderate),
			Difficult: ProjectionLevel(pr.Difficult),
		},
		Planning: Planning{
			QuickWinBaseWeeks:  h.QuickWinBaseWeeks,
			StrategicBaseWeeks: h.StrategicBaseWeeks,
			WeeksPerGap:        Effort(h.WeeksPerGap),
			StaffHoursPerGap:   Effort(h.StaffHoursPerGap),
		},
	}
}

// PoolRefreshInterval returns the refresh period; zero disables refreshes.
func (c *Config) PoolRefreshInterval() time.Duration {
	return time.Duration(c.PoolRefreshIntervalSec) * time.Second
}

// MatcherWeights converts the peer weights for the matcher.
func (c *Config) MatcherWeights() peer.Weights {
	return peer.Weights{
		Sector:       c.PeerWeights.Sector,
		SizeClass:    c.PeerWeights.SizeClass,
		Geography:    c.PeerWeights.Geography,
		ProgramTypes: c.PeerWeights.ProgramTypes,
		AnnualBudget: c.PeerWeights.AnnualBudget,
	}
}

// PriorityWeights converts the priority weights for the gap analyzer.
func (c *Config) PriorityWeights() gap.Weights {
	return gap.Weights{
		Urgency:        c.Priority.UrgencyWeight,
		Impact:         c.Priority.ImpactWeight,
		Addressability: c.Priority.AddressabilityWeight,
	}
}

// Projections converts the projection constants for the planner.
func (c *Config) Projections() plan.Projections {
	return plan.Projections{
		Easy:      plan.Projection(c.Projection.Easy),
		Moderate:  plan.Projection(c.Projection.Moderate),
		Difficult: plan.Projection(c.Projection.Difficult),
	}
}

// Heuristics converts the planning settings for the planner.
func (c *Config) Heuristics() plan.Heuristics {
	return plan.Heuristics{
		QuickWinBaseWeeks:  c.Planning.QuickWinBaseWeeks,
		StrategicBaseWeeks: c.Planning.StrategicBaseWeeks,
		WeeksPerGap:        plan.Effort(c.Planning.WeeksPerGap),
		StaffHoursPerGap:   plan.Effort(c.Planning.StaffHoursPerGap),
	}
}
