package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Snapshots are immutable, so saving an existing snapshot ID fails with this error.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document format or normaliser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Features requiring LLM (extraction, LLM classification, summaries) are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrNoPreviousSnapshot indicates a project has fewer than two snapshots to compare.
	ErrNoPreviousSnapshot = errors.New("no previous snapshot")

	// ErrAmbiguousIdentity marks a collection entity that has neither its
	// primary identity field nor any fallback. Such entities are skipped by
	// the diff engine and reported as warnings, never returned as errors.
	ErrAmbiguousIdentity = errors.New("ambiguous identity")

	// ErrDuplicateIdentity marks a collection entity whose identity repeats an
	// earlier entity in the same snapshot. Only the first occurrence is diffed.
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// ErrClassification is the sentinel wrapped by every ClassificationError.
	ErrClassification = errors.New("risk classification failed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
