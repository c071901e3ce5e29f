package benchtool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/peerbench/internal/domain/benchmark"
	"github.com/okian/peerbench/internal/domain/job"
)

// Client talks to the peerbench HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks the service liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// SubmitJob queues a request. Resubmitting a request id returns the earlier
// job with Duplicate set.
func (c *Client) SubmitJob(ctx context.Context, req benchmark.Request) (job.Job, error) { //nolint:gocritic // hugeParam: request is a value
	resp, err := c.do(ctx, http.MethodPost, "/v1/benchmarks/jobs", req)
	if err != nil {
		return job.Job{}, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return job.Job{}, err
	}
	switch resp.StatusCode {
	case http.StatusAccepted:
		var j job.Job
		if err := json.Unmarshal(body, &j); err != nil {
			return job.Job{}, fmt.Errorf("%w: %w", ErrUnexpected, err)
		}
		return j, nil
	case http.StatusTooManyRequests:
		return job.Job{}, ErrBackpressure
	default:
		return job.Job{}, fmt.Errorf("%w: status %d: %s", ErrUnexpected, resp.StatusCode, bytes.TrimSpace(body))
	}
}

// Job fetches the current state of a job.
func (c *Client) Job(ctx context.Context, id string) (job.Job, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/benchmarks/jobs/"+id, nil)
	if err != nil {
		return job.Job{}, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return job.Job{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return job.Job{}, fmt.Errorf("%w: status %d: %s", ErrUnexpected, resp.StatusCode, bytes.TrimSpace(body))
	}
	var j job.Job
	if err := json.Unmarshal(body, &j); err != nil {
		return job.Job{}, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	return j, nil
}

// Wait polls a job until it reaches a terminal status or ctx ends.
func (c *Client) Wait(ctx context.Context, id string, interval time.Duration) (job.Job, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		j, err := c.Job(ctx, id)
		if err != nil {
			return job.Job{}, err
		}
		if j.Status.Terminal() {
			return j, nil
		}
		select {
		case <-ctx.Done():
			return j, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
