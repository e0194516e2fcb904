package repository

import "errors"

var (
	// ErrAnalysisNotFound indicates the requested record does not exist.
	ErrAnalysisNotFound = errors.New("analysis record not found")

	// ErrRepositoryUnavailable indicates the backing store cannot be
	// reached.
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
