package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound        = errors.New("job not found")
	ErrInvalidJob      = errors.New("invalid job")
	ErrLoadPool        = errors.New("load peer pool failed")
	ErrPoolUnavailable = errors.New("peer pool unavailable")
)
