// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Stage identifies the pipeline stage a session is executing.
type Stage string

const (
	StageDiscovery  Stage = "discovery"
	StageGathering  Stage = "gathering"
	StageSanitizing Stage = "sanitizing"
	StageExtraction Stage = "extraction"
	StageValidation Stage = "validation"
	StageCompile    Stage = "compile"
	StageScoring    Stage = "scoring"
	StageAudit      Stage = "audit"
	StageReport     Stage = "report"
	StageDone       Stage = "done"
)

// SessionStatus is the terminal or in-flight status of a session.
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionComplete  SessionStatus = "complete"
	SessionDegraded  SessionStatus = "degraded"
	SessionCancelled SessionStatus = "cancelled"
	SessionFailed    SessionStatus = "failed"
)

// ResearchSession owns the full lifecycle state of one research run. It is
// created at intent submission and mutated only by the orchestrator between
// stages; worker tasks return values rather than touching it.
type ResearchSession struct {
	ID     string         `json:"id" yaml:"id"`
	Intent ResearchIntent `json:"intent" yaml:"intent"`

	Stage  Stage         `json:"stage" yaml:"stage"`
	Status SessionStatus `json:"status" yaml:"status"`

	// Round is the current gathering round, 1-based.
	Round int `json:"round" yaml:"round"`

	// Sources accumulates every candidate discovered across rounds,
	// keyed for citation resolution. Trust tiers never change once set.
	Sources []CandidateSource `json:"sources" yaml:"sources"`

	// ConnectorStatuses records per-connector discovery outcomes per round.
	ConnectorStatuses []ConnectorStatus `json:"connector_statuses,omitempty" yaml:"connector_statuses,omitempty"`

	// Documents holds the successfully fetched documents.
	Documents []RawDocument `json:"documents,omitempty" yaml:"documents,omitempty"`

	// Failures holds per-source gather failures; never fatal.
	Failures []FetchFailure `json:"failures,omitempty" yaml:"failures,omitempty"`

	// Evidence holds every extracted item, accepted or not, so rejected
	// evidence stays inspectable with its rejection reason.
	Evidence []Evidence `json:"evidence,omitempty" yaml:"evidence,omitempty"`

	// Validations pairs with Evidence by evidence ID.
	Validations []ValidationResult `json:"validations,omitempty" yaml:"validations,omitempty"`

	Findings []CompiledFinding `json:"findings,omitempty" yaml:"findings,omitempty"`
	Gaps     GapReport         `json:"gaps" yaml:"gaps"`
	Scores   []FrameworkScore  `json:"scores,omitempty" yaml:"scores,omitempty"`

	// Audits collects the meta-audit verdict of each round.
	Audits []MetaAuditVerdict `json:"audits,omitempty" yaml:"audits,omitempty"`

	Report *ResearchReport `json:"report,omitempty" yaml:"report,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// SourceIndex returns sources keyed by ID for citation resolution.
func (s *ResearchSession) SourceIndex() map[string]CandidateSource {
	idx := make(map[string]CandidateSource, len(s.Sources))
	for _, src := range s.Sources {
		idx[src.ID] = src
	}
	return idx
}

// AcceptedEvidence returns the evidence items whose validation verdict is
// ACCEPT, preserving extraction order.
func (s *ResearchSession) AcceptedEvidence() []Evidence {
	accepted := make(map[string]bool, len(s.Validations))
	for _, v := range s.Validations {
		if v.Verdict == VerdictAccept {
			accepted[v.EvidenceID] = true
		}
	}
	var out []Evidence
	for _, e := range s.Evidence {
		if accepted[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
