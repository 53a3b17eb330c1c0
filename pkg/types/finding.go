// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CompiledFinding is a deduplicated, categorized aggregation of validated
// evidence. EvidenceIDs only ever reference evidence that passed validation.
type CompiledFinding struct {
	// Category is the intent category this finding supports.
	Category string `json:"category" yaml:"category"`

	// Claim is the representative claim text for the deduplicated group.
	Claim string `json:"claim" yaml:"claim"`

	// EvidenceIDs lists the validated evidence supporting this finding.
	EvidenceIDs []string `json:"evidence_ids" yaml:"evidence_ids"`

	// Citations is the merged citation set across supporting evidence.
	Citations []Citation `json:"citations" yaml:"citations"`

	// Confidence in [0,1], derived from the count and trust weight of
	// the supporting evidence.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// GapEntry describes one required category lacking sufficient support.
type GapEntry struct {
	// Category is the unmet required category.
	Category string `json:"category" yaml:"category"`

	// Supporting is the number of findings that reached the category.
	Supporting int `json:"supporting" yaml:"supporting"`
}

// GapReport lists the intent's required categories with zero or
// below-threshold supporting findings.
type GapReport struct {
	Missing []GapEntry `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// IsEmpty reports whether every required category has sufficient support.
func (g GapReport) IsEmpty() bool { return len(g.Missing) == 0 }
