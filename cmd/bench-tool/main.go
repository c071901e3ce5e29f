package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/peerbench/internal/benchtool"
	"github.com/okian/peerbench/internal/domain/benchmark"
	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/pkg/logger"
)

// Default configuration constants.
const (
	defaultRequests     = 200
	defaultPoolSize     = 40
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 100 * time.Millisecond
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		catalogPath string
		logLevel    string
	)
	root := &cobra.Command{
		Use:          "bench-tool",
		Short:        "Generate peer pools, run local reports and load-test a peerbench service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithLevel(logLevel))
		},
	}
	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "metric catalog YAML (default: embedded catalog)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	loadCatalog := func() (*catalog.Catalog, error) {
		if catalogPath == "" {
			return catalog.Default(), nil
		}
		return catalog.LoadFile(catalogPath)
	}

	root.AddCommand(newGenerateCmd(loadCatalog), newReportCmd(loadCatalog), newLoadCmd(loadCatalog))
	return root
}

func newGenerateCmd(loadCatalog func() (*catalog.Catalog, error)) *cobra.Command {
	var (
		size   int
		seed   uint64
		sector string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a reproducible synthetic peer pool as YAML to stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadCatalog()
			if err != nil {
				return err
			}
			if sector != "" && !c.HasSector(sector) {
				return fmt.Errorf("%w: unknown sector %q", benchtool.ErrInvalidConfig, sector)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			if err := enc.Encode(benchtool.NewGenerator(c, sector, seed).Pool(size)); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().IntVar(&size, "size", defaultPoolSize, "number of candidates")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&sector, "sector", "", "sector of every candidate (default: first catalog sector)")
	return cmd
}

func newReportCmd(loadCatalog func() (*catalog.Catalog, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "report <request.yaml|request.json>",
		Short: "Benchmark one request locally and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			report, err := benchtool.LocalReport(f, benchmark.NewEngine(c))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}

func newLoadCmd(loadCatalog func() (*catalog.Catalog, error)) *cobra.Command {
	cfg := &benchtool.Config{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Submit synthetic benchmark jobs to a running service and wait for them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadCatalog()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
			defer cancel()
			stats, err := benchtool.Run(ctx, cfg, c, logger.Get())
			if err != nil {
				return err
			}
			if stats.Failed > 0 || stats.Rejected > 0 {
				return fmt.Errorf("%d jobs failed and %d were rejected", stats.Failed, stats.Rejected)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	cmd.Flags().IntVar(&cfg.Requests, "requests", defaultRequests, "number of jobs to submit")
	cmd.Flags().IntVar(&cfg.PoolSize, "pool-size", defaultPoolSize, "candidates per request")
	cmd.Flags().IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "concurrent submitters")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 1, "random seed; reusing a seed resubmits the same request ids")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	cmd.Flags().DurationVar(&cfg.PollInterval, "poll", defaultPollInterval, "job status poll interval")
	cmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "log every finished job")
	return cmd
}
