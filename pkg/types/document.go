// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FetchStatus indicates the outcome of fetching a candidate source.
type FetchStatus string

const (
	FetchOK          FetchStatus = "ok"
	FetchUnavailable FetchStatus = "unavailable"
)

// RawDocument holds the content fetched for one candidate source. It is
// produced by the gatherer pool and consumed read-only downstream.
type RawDocument struct {
	// SourceID references the CandidateSource this document came from.
	SourceID string `json:"source_id" yaml:"source_id"`

	// Locator is the URL or identifier that was fetched.
	Locator string `json:"locator" yaml:"locator"`

	// Content is the fetched body, unsanitized.
	Content string `json:"content" yaml:"content"`

	// FetchedAt is the time the fetch completed.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`

	// Status records whether the fetch succeeded.
	Status FetchStatus `json:"status" yaml:"status"`
}

// SanitizedDocument is a RawDocument whose content has passed through the
// sanitizer. Extraction consumes only sanitized documents.
type SanitizedDocument struct {
	// SourceID references the originating CandidateSource.
	SourceID string `json:"source_id" yaml:"source_id"`

	// Locator is carried through from the raw document.
	Locator string `json:"locator" yaml:"locator"`

	// Content is the neutralized text.
	Content string `json:"content" yaml:"content"`

	// FetchedAt is carried through from the raw document.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`

	// SanitizationTriggered reports whether any directive-like pattern
	// was found and stripped. A warning condition, not a failure.
	SanitizationTriggered bool `json:"sanitization_triggered" yaml:"sanitization_triggered"`

	// MatchedPatterns lists the pattern names that fired.
	MatchedPatterns []string `json:"matched_patterns,omitempty" yaml:"matched_patterns,omitempty"`
}

// FetchFailure records a source that could not be gathered this round.
// Failures are isolated: they never abort the round.
type FetchFailure struct {
	SourceID  string `json:"source_id" yaml:"source_id"`
	Connector string `json:"connector" yaml:"connector"`

	// Attempts counts fetch attempts including retries.
	Attempts int `json:"attempts" yaml:"attempts"`

	// Reason is a human-readable description of the final error.
	Reason string `json:"reason" yaml:"reason"`

	// Permanent distinguishes non-retryable failures (e.g. HTTP 404)
	// from transient ones that exhausted their retry budget.
	Permanent bool `json:"permanent" yaml:"permanent"`
}
