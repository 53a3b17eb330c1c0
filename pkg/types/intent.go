// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the evidence-engine
// pipeline: research intents, candidate sources, raw and sanitized documents,
// evidence, validation results, compiled findings, framework scores, audit
// verdicts, reports, and session state.
package types

import "time"

// ResearchIntent is the structured research request that drives a session.
// It is created once at intent submission and never mutated afterwards;
// every stage receives it by value.
type ResearchIntent struct {
	// Topic is the research question or subject under investigation.
	Topic string `json:"topic" yaml:"topic"`

	// Keywords are the search terms derived from the topic.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// RequiredCategories lists the evidence categories a complete answer
	// must cover. The compiler reports categories without support as gaps.
	RequiredCategories []string `json:"required_categories" yaml:"required_categories"`

	// RecencyWindow bounds how old evidence may be before it is flagged
	// stale. Zero disables the recency check.
	RecencyWindow time.Duration `json:"recency_window" yaml:"recency_window"`

	// MaxSources caps the number of candidate sources gathered per round.
	MaxSources int `json:"max_sources" yaml:"max_sources"`
}
