// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate runs the three independent evidence checks — citation,
// recency, quality — and combines them with AND semantics. Results are
// independent of submission order, and rejected evidence is kept in session
// state with its reason rather than discarded.
package validate

import (
	"fmt"
	"time"

	"github.com/meshintel/evidence-engine/pkg/types"
)

// Options configures a validation pass.
type Options struct {
	// Sources is the session's discovery index; every citation must
	// resolve into it.
	Sources map[string]types.CandidateSource

	// RecencyWindow is the maximum evidence age. Zero disables the check.
	RecencyWindow time.Duration

	// QualityFloor is the minimum effective quality: extraction
	// confidence scaled by the source's trust weight.
	QualityFloor float64

	// Now anchors the recency check; tests pin it. Zero means time.Now.
	Now time.Time

	// StaleOverrides lists evidence IDs the caller explicitly accepts
	// despite failing recency.
	StaleOverrides map[string]bool
}

// Validate checks a single evidence item. The citation and quality checks
// gate acceptance; a recency-only failure yields STALE, which is excluded
// from scoring unless overridden for that item.
func Validate(e types.Evidence, opts Options) types.ValidationResult {
	res := types.ValidationResult{EvidenceID: e.ID}

	res.CitationOK, res.Reason = checkCitations(e, opts.Sources)
	res.RecencyOK = checkRecency(e, opts)
	res.QualityOK = checkQuality(e, opts.QualityFloor)

	switch {
	case !res.CitationOK:
		res.Verdict = types.VerdictReject
		// Reason set by checkCitations.
	case !res.QualityOK:
		res.Verdict = types.VerdictReject
		res.Reason = fmt.Sprintf("quality %.2f below floor %.2f (trust weight %.2f)",
			effectiveQuality(e), opts.QualityFloor, e.TrustWeight)
	case !res.RecencyOK && !opts.StaleOverrides[e.ID]:
		res.Verdict = types.VerdictStale
		res.Reason = fmt.Sprintf("%s: dated %s, outside window %s",
			types.ErrStaleEvidence.Error(), evidenceDate(e).Format("2006-01-02"), opts.RecencyWindow)
	default:
		res.Verdict = types.VerdictAccept
		res.Reason = ""
	}
	return res
}

// ValidateAll validates a batch. Output order mirrors input order; each
// item's result depends only on that item and the discovery index.
func ValidateAll(evidence []types.Evidence, opts Options) []types.ValidationResult {
	out := make([]types.ValidationResult, 0, len(evidence))
	for _, e := range evidence {
		out = append(out, Validate(e, opts))
	}
	return out
}

// checkCitations requires a non-empty citation list where every citation
// resolves to a source discovered in this session.
func checkCitations(e types.Evidence, sources map[string]types.CandidateSource) (bool, string) {
	if len(e.Citations) == 0 {
		return false, types.ErrCitationMissing.Error()
	}
	for _, c := range e.Citations {
		if _, ok := sources[c.SourceID]; !ok {
			return false, fmt.Sprintf("unresolvable citation: source %s not in discovery results", c.SourceID)
		}
	}
	return true, ""
}

// evidenceDate prefers the extracted claim date, falling back to fetch time.
func evidenceDate(e types.Evidence) time.Time {
	if !e.ClaimDate.IsZero() {
		return e.ClaimDate
	}
	return e.FetchedAt
}

func checkRecency(e types.Evidence, opts Options) bool {
	if opts.RecencyWindow <= 0 {
		return true
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	d := evidenceDate(e)
	if d.IsZero() {
		return false
	}
	return now.Sub(d) <= opts.RecencyWindow
}

// effectiveQuality scales extraction confidence by the source's trust
// weight, so a low-trust source needs a stronger extraction to pass.
func effectiveQuality(e types.Evidence) float64 {
	return e.Quality * e.TrustWeight
}

func checkQuality(e types.Evidence, floor float64) bool {
	return effectiveQuality(e) >= floor
}
