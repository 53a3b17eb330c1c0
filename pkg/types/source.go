// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TrustTier is a provenance-based credibility classification assigned to a
// source at discovery time. It is derived only from connector type and
// source metadata, never from fetched content, and is frozen for the
// lifetime of the session.
type TrustTier string

const (
	TrustHigh   TrustTier = "high"
	TrustMedium TrustTier = "medium"
	TrustLow    TrustTier = "low"
)

// Weight returns the numeric weight used when scoring evidence that
// inherits this tier. Unknown tiers weigh the same as TrustLow.
func (t TrustTier) Weight() float64 {
	switch t {
	case TrustHigh:
		return 1.0
	case TrustMedium:
		return 0.6
	default:
		return 0.3
	}
}

// CandidateSource is an information source found during discovery.
// Immutable once the trust tier is assigned.
type CandidateSource struct {
	// ID is a stable slug derived from the connector name and locator.
	ID string `json:"id" yaml:"id"`

	// Connector identifies which connector type discovered this source.
	Connector string `json:"connector" yaml:"connector"`

	// Locator is the URL or identifier used to fetch the source.
	Locator string `json:"locator" yaml:"locator"`

	// Title is the source title as reported by the connector.
	Title string `json:"title" yaml:"title"`

	// Publisher is the publishing domain or venue, used by trust rules.
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`

	// PublishedAt is the publication date when the connector reports one.
	PublishedAt time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`

	// PeerReviewed marks sources the connector knows went through
	// editorial or peer review. A provenance signal, not a content signal.
	PeerReviewed bool `json:"peer_reviewed,omitempty" yaml:"peer_reviewed,omitempty"`

	// Tier is the trust tier assigned by discovery rules.
	Tier TrustTier `json:"tier" yaml:"tier"`
}

// ConnectorStatus records the per-connector outcome of a discovery round.
// A failed connector never blocks the others; its error is carried here.
type ConnectorStatus struct {
	Connector string `json:"connector" yaml:"connector"`
	Found     int    `json:"found" yaml:"found"`
	Err       string `json:"err,omitempty" yaml:"err,omitempty"`
}
