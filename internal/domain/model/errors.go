package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for the benchmarking core. These allow errors.Is from callers.
var (
	ErrInsufficientCohort = errors.New("insufficient peer cohort")
	ErrMetricNotFound     = errors.New("metric not found")
	ErrInvalidProfile     = errors.New("invalid organization profile")
	ErrInvalidRange       = errors.New("value out of range")
)

// InsufficientCohortError reports a cohort smaller than the configured floor.
type InsufficientCohortError struct {
	Have int
	Need int
}

func (e *InsufficientCohortError) Error() string {
	return fmt.Sprintf("%s: %d peers matched, at least %d required", ErrInsufficientCohort, e.Have, e.Need)
}

// Is matches ErrInsufficientCohort.
func (e *InsufficientCohortError) Is(target error) bool { return target == ErrInsufficientCohort }

// MetricNotFoundError reports a requested metric missing from the catalog,
// the organization's scores, or the peer statistics.
type MetricNotFoundError struct {
	Metric string
	Reason string
}

func (e *MetricNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q (%s)", ErrMetricNotFound, e.Metric, e.Reason)
}

// Is matches ErrMetricNotFound.
func (e *MetricNotFoundError) Is(target error) bool { return target == ErrMetricNotFound }

// InvalidProfileError reports a malformed organization profile field.
type InvalidProfileError struct {
	Field string
	Value string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("%s: field %s has invalid value %q", ErrInvalidProfile, e.Field, e.Value)
}

// Is matches ErrInvalidProfile.
func (e *InvalidProfileError) Is(target error) bool { return target == ErrInvalidProfile }

// InvalidRangeError reports a numeric input outside its permitted range.
type InvalidRangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("%s: %s=%g not in [%g, %g]", ErrInvalidRange, e.Field, e.Value, e.Min, e.Max)
}

// Is matches ErrInvalidRange.
func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }

// Error kinds used for metrics labels and API error codes.
const (
	KindInsufficientCohort = "insufficient_cohort"
	KindMetricNotFound     = "metric_not_found"
	KindInvalidProfile     = "invalid_profile"
	KindInvalidRange       = "invalid_range"
	KindInternal           = "internal"
)

// Kind classifies an error from the benchmarking core.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientCohort):
		return KindInsufficientCohort
	case errors.Is(err, ErrMetricNotFound):
		return KindMetricNotFound
	case errors.Is(err, ErrInvalidProfile):
		return KindInvalidProfile
	case errors.Is(err, ErrInvalidRange):
		return KindInvalidRange
	default:
		return KindInternal
	}
}
