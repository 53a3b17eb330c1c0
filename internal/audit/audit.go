// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit holds the meta-auditor: the per-round coherence and
// sufficiency check that decides whether a session proceeds to reporting,
// runs another gathering round, or flags its findings as contradictory.
package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/meshintel/evidence-engine/internal/compile"
	"github.com/meshintel/evidence-engine/pkg/types"
)

// negations marks claim texts asserting the opposite of an otherwise
// identical claim. Matching is deliberately narrow: a contradiction flag on
// a clean session is worse than a missed one, since flagged sessions still
// complete.
var negations = []string{"not ", "no ", "never ", "without "}

// Review audits one round. The decision is deterministic over its inputs:
//
//   - contradictory findings within a category flag the session;
//   - an empty gap report is sufficient;
//   - remaining gaps trigger another round while rounds are left, and are
//     noted as unresolved at the bound.
func Review(findings []types.CompiledFinding, gaps types.GapReport, round, maxRounds int) types.MetaAuditVerdict {
	v := types.MetaAuditVerdict{Round: round}

	if notes := contradictions(findings); len(notes) > 0 {
		v.Disposition = types.AuditContradictory
		v.Notes = notes
		return v
	}

	if gaps.IsEmpty() {
		v.Disposition = types.AuditSufficient
		return v
	}

	for _, g := range gaps.Missing {
		v.Notes = append(v.Notes, fmt.Sprintf("category %q has %d supporting findings", g.Category, g.Supporting))
	}
	if round >= maxRounds {
		v.Disposition = types.AuditSufficient
		v.Notes = append(v.Notes, fmt.Sprintf("gaps unresolved after %d rounds; proceeding with caveats", maxRounds))
		return v
	}
	v.Disposition = types.AuditNeedsMoreEvidence
	return v
}

// contradictions reports pairs of findings in the same category whose
// normalized claims differ only by a leading negation.
func contradictions(findings []types.CompiledFinding) []string {
	type key struct{ category, stripped string }
	polarity := make(map[key]map[bool][]string)
	for _, f := range findings {
		norm := compile.NormalizeClaim(f.Claim)
		stripped, negated := stripNegation(norm)
		k := key{f.Category, stripped}
		if polarity[k] == nil {
			polarity[k] = make(map[bool][]string)
		}
		polarity[k][negated] = append(polarity[k][negated], f.Claim)
	}

	var notes []string
	for k, sides := range polarity {
		if len(sides[true]) > 0 && len(sides[false]) > 0 {
			notes = append(notes, fmt.Sprintf("category %q carries contradictory findings: %q vs %q",
				k.category, sides[false][0], sides[true][0]))
		}
	}
	sort.Strings(notes)
	return notes
}

// stripNegation removes the first negation token from a normalized claim
// and reports whether one was present.
func stripNegation(norm string) (string, bool) {
	with := " " + norm + " "
	for _, neg := range negations {
		idx := strings.Index(with, " "+neg)
		if idx < 0 {
			continue
		}
		cleaned := with[:idx+1] + with[idx+1+len(neg):]
		return strings.TrimSpace(strings.Join(strings.Fields(cleaned), " ")), true
	}
	return norm, false
}
