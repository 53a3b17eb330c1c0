// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FrameworkScore is the output of one decision framework: a deterministic
// pure function over compiled findings and the gap report.
type FrameworkScore struct {
	// Framework names the scoring function that produced this score.
	Framework string `json:"framework" yaml:"framework"`

	// Score is on a 0-10 scale.
	Score float64 `json:"score" yaml:"score"`

	// Rationale explains the score in one or two sentences.
	Rationale string `json:"rationale" yaml:"rationale"`

	// CitedEvidence lists evidence IDs referenced by the rationale.
	// Always a subset of the IDs carried by the input findings.
	CitedEvidence []string `json:"cited_evidence,omitempty" yaml:"cited_evidence,omitempty"`
}

// AuditDisposition is the meta-auditor's per-round decision.
type AuditDisposition string

const (
	// AuditSufficient means the session proceeds to report generation.
	AuditSufficient AuditDisposition = "SUFFICIENT"

	// AuditNeedsMoreEvidence triggers another gathering round, bounded
	// by the configured max_rounds.
	AuditNeedsMoreEvidence AuditDisposition = "NEEDS_MORE_EVIDENCE"

	// AuditContradictory flags irreconcilable findings. The session still
	// completes; the report carries the flag.
	AuditContradictory AuditDisposition = "CONTRADICTORY"
)

// MetaAuditVerdict records one round's coherence and sufficiency check.
type MetaAuditVerdict struct {
	Round       int              `json:"round" yaml:"round"`
	Disposition AuditDisposition `json:"disposition" yaml:"disposition"`
	Notes       []string         `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ResearchReport is the final citation-backed aggregate of a session.
type ResearchReport struct {
	SessionID string         `json:"session_id" yaml:"session_id"`
	Intent    ResearchIntent `json:"intent" yaml:"intent"`

	Findings []CompiledFinding `json:"findings" yaml:"findings"`
	Scores   []FrameworkScore  `json:"scores" yaml:"scores"`
	Gaps     GapReport         `json:"gaps" yaml:"gaps"`
	Audit    MetaAuditVerdict  `json:"audit" yaml:"audit"`

	// Caveats state the report's own confidence and gap posture:
	// insufficient evidence, contradictions, degraded gathering.
	Caveats []string `json:"caveats,omitempty" yaml:"caveats,omitempty"`

	// Rounds is the number of gathering rounds the session ran.
	Rounds int `json:"rounds" yaml:"rounds"`

	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}
