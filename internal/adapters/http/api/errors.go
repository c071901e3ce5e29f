package api

import (
	"errors"
	"fmt"
	"net/http"

	repository "github.com/okian/peerbench/internal/adapters/repository"
	service "github.com/okian/peerbench/internal/app"
	"github.com/okian/peerbench/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// Error codes carried in error responses.
const (
	CodeBadRequest              = "bad_request"
	CodeBenchmarkingUnavailable = "benchmarking_unavailable"
	CodeMetricNotFound          = "metric_not_found"
	CodeNotFound                = "not_found"
	CodeBackpressure            = "backpressure"
	CodeUnavailable             = "unavailable"
	CodeInternal                = "internal_error"
)

func badRequest(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err)
}

// statusFor maps an error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrEmptyBatch),
		errors.Is(err, model.ErrInvalidProfile),
		errors.Is(err, model.ErrInvalidRange):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, model.ErrInsufficientCohort):
		return http.StatusUnprocessableEntity, CodeBenchmarkingUnavailable
	case errors.Is(err, model.ErrMetricNotFound):
		return http.StatusUnprocessableEntity, CodeMetricNotFound
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, CodeBackpressure
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, service.ErrNoPool):
		return http.StatusServiceUnavailable, CodeUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
