// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Error taxonomy for the pipeline. Per-document and per-source failures are
// isolated and never abort a round; only ErrConfiguration is fatal, and it
// aborts the session before any stage runs.
var (
	// ErrSourceUnavailable marks a fetch that failed after its retry budget.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrCitationMissing marks evidence with no resolvable citation.
	ErrCitationMissing = errors.New("citation missing")

	// ErrStaleEvidence marks evidence outside the recency window.
	ErrStaleEvidence = errors.New("stale evidence")

	// ErrInsufficientEvidence marks a report blocked by unresolved gaps
	// above the configured hard threshold.
	ErrInsufficientEvidence = errors.New("insufficient evidence")

	// ErrContradictoryFindings marks irreconcilable findings; flagged in
	// the report, never fatal to the session.
	ErrContradictoryFindings = errors.New("contradictory findings")

	// ErrConfiguration marks an invalid pipeline configuration.
	ErrConfiguration = errors.New("configuration error")
)

// FetchError wraps a connector fetch failure with its retry classification.
type FetchError struct {
	// StatusCode is the HTTP status when the failure came from a response,
	// zero otherwise (timeouts, connection errors).
	StatusCode int

	// Transient failures (timeouts, HTTP 429/5xx) are retried with
	// backoff; permanent ones (HTTP 4xx) are not.
	Transient bool

	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch failed: HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error { return e.Err }

// IsTransientFetch reports whether err is a FetchError classified transient.
func IsTransientFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Transient
}
