// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Citation links a claim to the candidate source it was extracted from.
type Citation struct {
	// SourceID is the CandidateSource ID the claim resolves to.
	SourceID string `json:"source_id" yaml:"source_id"`

	// Locator is the source locator, repeated here so a citation remains
	// readable without a source lookup.
	Locator string `json:"locator" yaml:"locator"`
}

// Evidence is an atomic citable claim extracted from a sanitized document.
// Every instance carries at least one citation; the extractor discards
// uncited claims and the validator rejects any that slip through.
type Evidence struct {
	// ID is a stable digest of the source ID and claim text, so
	// re-extracting unchanged content yields the same ID.
	ID string `json:"id" yaml:"id"`

	// Claim is the extracted statement.
	Claim string `json:"claim" yaml:"claim"`

	// Category is the intent category this claim supports.
	Category string `json:"category" yaml:"category"`

	// Citations resolve the claim to discovered sources. Never empty.
	Citations []Citation `json:"citations" yaml:"citations"`

	// ClaimDate is the best-effort date extracted from the claim text.
	// Zero when no date was found; the validator falls back to FetchedAt.
	ClaimDate time.Time `json:"claim_date,omitempty" yaml:"claim_date,omitempty"`

	// FetchedAt is the fetch time of the originating document.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`

	// Quality is the extraction confidence in [0,1].
	Quality float64 `json:"quality" yaml:"quality"`

	// TrustWeight is inherited from the source's trust tier.
	TrustWeight float64 `json:"trust_weight" yaml:"trust_weight"`
}

// Verdict is the aggregate outcome of validating one evidence item.
type Verdict string

const (
	// VerdictAccept means all three checks passed.
	VerdictAccept Verdict = "ACCEPT"

	// VerdictReject means the citation or quality check failed.
	VerdictReject Verdict = "REJECT"

	// VerdictStale means only the recency check failed. Stale evidence is
	// excluded from scoring unless the caller overrides per-evidence.
	VerdictStale Verdict = "STALE"
)

// ValidationResult records the per-check outcomes for one evidence item.
// Rejected items stay in session state for auditability.
type ValidationResult struct {
	EvidenceID string `json:"evidence_id" yaml:"evidence_id"`

	// CitationOK reports whether every citation resolved to a source
	// discovered in this session.
	CitationOK bool `json:"citation_ok" yaml:"citation_ok"`

	// RecencyOK reports whether the claim date (or fetch date) falls
	// inside the intent's recency window.
	RecencyOK bool `json:"recency_ok" yaml:"recency_ok"`

	// QualityOK reports whether the quality score met the floor.
	QualityOK bool `json:"quality_ok" yaml:"quality_ok"`

	// Verdict is the AND-combined outcome.
	Verdict Verdict `json:"verdict" yaml:"verdict"`

	// Reason explains a REJECT or STALE verdict.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}
