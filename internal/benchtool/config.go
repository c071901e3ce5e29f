// Package benchtool drives the peerbench service from the command line: it
// generates synthetic peer pools, runs reports locally and load-tests the job
// API.
package benchtool

import (
	"errors"
	"time"
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Requests     int           // Number of jobs to submit
	PoolSize     int           // Candidates generated per request
	Workers      int           // Number of concurrent submitters
	Seed         uint64        // Seed for synthetic data
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between job status polls
	Verbose      bool          // Log every job transition
}

// Stats holds load test statistics.
type Stats struct {
	Submitted  int
	Duplicates int
	Rejected   int
	Completed  int
	Failed     int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

var (
	ErrInvalidConfig = errors.New("invalid bench-tool config")
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrUnexpected    = errors.New("unexpected response")
	ErrBackpressure  = errors.New("service rejected job")
)

// Validate checks the run configuration.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("base url is required"))
	case c.Requests < 1:
		return errors.Join(ErrInvalidConfig, errors.New("requests must be positive"))
	case c.Workers < 1:
		return errors.Join(ErrInvalidConfig, errors.New("workers must be positive"))
	case c.PoolSize < 1:
		return errors.Join(ErrInvalidConfig, errors.New("pool size must be positive"))
	case c.PollInterval <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("poll interval must be positive"))
	}
	return nil
}
