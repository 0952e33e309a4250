package domain

import "errors"

var (
	// ErrInvalidInput rejects malformed or empty query text outright.
	ErrInvalidInput = errors.New("domain: invalid input")

	// ErrExtractionUnavailable means the embedding path is unreachable
	// (model missing or misconfigured). It triggers a permanent downgrade
	// to the heuristic strategy for the rest of the process lifetime.
	ErrExtractionUnavailable = errors.New("domain: extraction unavailable")

	// ErrExtractionFailed is a runtime failure on a single input; only
	// that input falls back to the heuristic strategy.
	ErrExtractionFailed = errors.New("domain: extraction failed")

	// ErrNoEligibleCandidates means stage filtering left nothing to pick.
	ErrNoEligibleCandidates = errors.New("domain: no eligible candidates")

	// ErrSequencingImpossible means no guide or target material exists
	// anywhere in the library.
	ErrSequencingImpossible = errors.New("domain: sequencing impossible")

	// ErrDecodeFailed is an upstream media problem; the segment is skipped
	// during library construction.
	ErrDecodeFailed = errors.New("domain: decode failed")

	ErrNotFound = errors.New("domain: not found")
)
