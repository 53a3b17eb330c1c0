// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"strings"

	"github.com/meshintel/evidence-engine/pkg/types"
)

// Trust tier assignment is rule-based and deterministic given connector
// type and source provenance metadata. Fetched content never participates;
// the tier is frozen once assigned.

// highTrustSuffixes are publisher host suffixes treated as authoritative
// provenance regardless of connector.
var highTrustSuffixes = []string{".gov", ".edu", ".int"}

// AssignTier returns the trust tier for a candidate source based on its
// provenance signals.
func AssignTier(src types.CandidateSource) types.TrustTier {
	publisher := strings.ToLower(src.Publisher)

	for _, suffix := range highTrustSuffixes {
		if strings.HasSuffix(publisher, suffix) {
			return types.TrustHigh
		}
	}

	switch src.Connector {
	case "scholarly":
		if src.PeerReviewed {
			return types.TrustHigh
		}
		return types.TrustMedium
	case "newsfeed":
		if publisher != "" {
			return types.TrustMedium
		}
		return types.TrustLow
	case "web":
		if strings.HasSuffix(publisher, ".org") {
			return types.TrustMedium
		}
		return types.TrustLow
	default:
		return types.TrustLow
	}
}
