package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("job queue is full")
	ErrNoPool       = errors.New("no candidate pool available")
	ErrEmptyBatch   = errors.New("empty batch")
)
