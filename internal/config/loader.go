package config

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "PEERBENCH_"
	envConfigPath = "PEERBENCH_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if PEERBENCH_CONFIG is set
//  3. env (prefix PEERBENCH_; a double underscore separates nested keys,
//     e.g. PEERBENCH_PRIORITY__URGENCY_WEIGHT)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	// the path variable is not a setting
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.MinCohortSize < 1:
		return fmt.Errorf("%w: min_cohort_size must be at least 1", ErrInvalidConfig)
	case c.MaxPeers < c.MinCohortSize:
		return fmt.Errorf("%w: max_peers (%d) must not be below min_cohort_size (%d)", ErrInvalidConfig, c.MaxPeers, c.MinCohortSize)
	case c.BudgetTolerance <= 0:
		return fmt.Errorf("%w: budget_tolerance must be positive", ErrInvalidConfig)
	case c.PoolRefreshIntervalSec < 0:
		return fmt.Errorf("%w: pool_refresh_interval_sec must not be negative", ErrInvalidConfig)
	}

	pw := c.PeerWeights
	peerWeights := []float64{pw.Sector, pw.SizeClass, pw.Geography, pw.ProgramTypes, pw.AnnualBudget}
	if err := nonNegative("peer_weights", peerWeights); err != nil {
		return err
	}
	if sum(peerWeights) == 0 {
		return fmt.Errorf("%w: peer_weights must not all be zero", ErrInvalidConfig)
	}

	p := c.Priority
	priority := []float64{p.UrgencyWeight, p.ImpactWeight, p.AddressabilityWeight}
	if err := nonNegative("priority", priority); err != nil {
		return err
	}
	if s := sum(priority); math.Abs(s-100) > 1e-9 {
		return fmt.Errorf("%w: priority weights must sum to 100, got %g", ErrInvalidConfig, s)
	}

	for name, lvl := range map[string]ProjectionLevel{
		"easy": c.Projection.Easy, "moderate": c.Projection.Moderate, "difficult": c.Projection.Difficult,
	} {
		if lvl.Improvement < 0 || lvl.Confidence < 0 || lvl.Confidence > 100 {
			return fmt.Errorf("%w: projection.%s is out of range", ErrInvalidConfig, name)
		}
	}

	pl := c.Planning
	for _, v := range []int{
		pl.QuickWinBaseWeeks, pl.StrategicBaseWeeks,
		pl.WeeksPerGap.Easy, pl.WeeksPerGap.Moderate, pl.WeeksPerGap.Difficult,
		pl.StaffHoursPerGap.Easy, pl.StaffHoursPerGap.Moderate, pl.StaffHoursPerGap.Difficult,
	} {
		if v < 0 {
			return fmt.Errorf("%w: planning values must not be negative", ErrInvalidConfig)
		}
	}
	return nil
}

func nonNegative(field string, vs []float64) error {
	for _, v := range vs {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, field)
		}
	}
	return nil
}

func sum(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}
