package config_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/okian/peerbench/internal/config"
	"github.com/okian/peerbench/internal/domain/plan"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.MinCohortSize, convey.ShouldEqual, 5)
				convey.So(cfg.MaxPeers, convey.ShouldEqual, 25)
				convey.So(cfg.Priority.UrgencyWeight, convey.ShouldEqual, 40)
				convey.So(cfg.PoolRefreshInterval(), convey.ShouldEqual, 5*time.Minute)
			})

			convey.Convey("Then domain settings match the engine defaults", func() {
				convey.So(cfg.Projections(), convey.ShouldResemble, plan.DefaultProjections())
				convey.So(cfg.Heuristics(), convey.ShouldResemble, plan.DefaultHeuristics())
				convey.So(cfg.PriorityWeights().Impact, convey.ShouldEqual, 35)
				convey.So(cfg.MatcherWeights().Sector, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PEERBENCH_ADDR", ":8080")
			_ = os.Setenv("PEERBENCH_QUEUE_SIZE", "64")
			_ = os.Setenv("PEERBENCH_WORKER_COUNT", "16")
			_ = os.Setenv("PEERBENCH_DATABASE_URL", "postgres://bench@db/peers")
			_ = os.Setenv("PEERBENCH_PRIORITY__URGENCY_WEIGHT", "50")
			_ = os.Setenv("PEERBENCH_PRIORITY__IMPACT_WEIGHT", "25")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults including nested keys", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "postgres://bench@db/peers")
				convey.So(cfg.Priority.UrgencyWeight, convey.ShouldEqual, 50)
				convey.So(cfg.Priority.ImpactWeight, convey.ShouldEqual, 25)
				convey.So(cfg.Priority.AddressabilityWeight, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When loading config with a YAML file and env overrides", func() {
			tmpFile := createTempConfigFile(`
# file settings
addr: ":9090"
worker_count: 24
pool_file: /etc/peerbench/pool.yaml
projection:
  easy: {improvement: 20, confidence: 90}
planning:
  weeks_per_gap: {easy: 2}
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("PEERBENCH_CONFIG", tmpFile)
			_ = os.Setenv("PEERBENCH_WORKER_COUNT", "32")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins over file and file wins over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
				convey.So(cfg.PoolFile, convey.ShouldEqual, "/etc/peerbench/pool.yaml")
				convey.So(cfg.Projection.Easy.Improvement, convey.ShouldEqual, 20)
				convey.So(cfg.Projection.Moderate.Improvement, convey.ShouldEqual, 12)
				convey.So(cfg.Planning.WeeksPerGap.Easy, convey.ShouldEqual, 2)
				convey.So(cfg.Planning.WeeksPerGap.Difficult, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("PEERBENCH_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When the YAML file does not exist", func() {
			_ = os.Setenv("PEERBENCH_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When a numeric variable is not a number", func() {
			_ = os.Setenv("PEERBENCH_QUEUE_SIZE", "invalid")

			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When the addr is empty", func() {
			_ = os.Setenv("PEERBENCH_ADDR", "")

			cfg, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When priority weights do not sum to 100", func() {
			_ = os.Setenv("PEERBENCH_PRIORITY__URGENCY_WEIGHT", "60")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "sum to 100")
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())
		convey.So(cfg.Validate(), convey.ShouldBeNil)

		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"min cohort below one", func(c *config.Config) { c.MinCohortSize = 0 }},
			{"max peers below min", func(c *config.Config) { c.MaxPeers = 3 }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"zero queue", func(c *config.Config) { c.QueueSize = 0 }},
			{"non-positive tolerance", func(c *config.Config) { c.BudgetTolerance = 0 }},
			{"negative refresh", func(c *config.Config) { c.PoolRefreshIntervalSec = -1 }},
			{"negative peer weight", func(c *config.Config) { c.PeerWeights.Geography = -1 }},
			{"zero peer weights", func(c *config.Config) { c.PeerWeights = config.PeerWeights{} }},
			{"confidence above 100", func(c *config.Config) { c.Projection.Difficult.Confidence = 101 }},
			{"negative planning", func(c *config.Config) { c.Planning.StrategicBaseWeeks = -1 }},
		}
		for _, tc := range cases {
			convey.Convey("Then rejecting "+tc.name, func() {
				tc.mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"PEERBENCH_CONFIG",
		"PEERBENCH_ADDR",
		"PEERBENCH_QUEUE_SIZE",
		"PEERBENCH_WORKER_COUNT",
		"PEERBENCH_DATABASE_URL",
		"PEERBENCH_PRIORITY__URGENCY_WEIGHT",
		"PEERBENCH_PRIORITY__IMPACT_WEIGHT",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "peerbench-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
