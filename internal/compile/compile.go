// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compile aggregates accepted evidence into deduplicated,
// categorized findings and reports coverage gaps against the intent's
// required categories.
package compile

import (
	"sort"
	"strings"
	"unicode"

	"github.com/meshintel/evidence-engine/pkg/types"
)

// Compile groups accepted evidence by category and normalized claim,
// merging duplicates into a single finding with a union of citations.
// Only evidence whose validation verdict is ACCEPT contributes. Output is
// sorted by category then claim, so compilation is independent of the order
// evidence arrived in.
func Compile(evidence []types.Evidence, results []types.ValidationResult, intent types.ResearchIntent, minCategoryFindings int) ([]types.CompiledFinding, types.GapReport) {
	accepted := make(map[string]bool, len(results))
	for _, r := range results {
		if r.Verdict == types.VerdictAccept {
			accepted[r.EvidenceID] = true
		}
	}

	groups := make(map[string]*group)
	for _, e := range evidence {
		if !accepted[e.ID] {
			continue
		}
		key := e.Category + "\x00" + NormalizeClaim(e.Claim)
		g, ok := groups[key]
		if !ok {
			g = &group{category: e.Category}
			groups[key] = g
		}
		g.add(e)
	}

	findings := make([]types.CompiledFinding, 0, len(groups))
	for _, g := range groups {
		findings = append(findings, g.finding())
	}
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Category != findings[j].Category {
			return findings[i].Category < findings[j].Category
		}
		return findings[i].Claim < findings[j].Claim
	})

	return findings, gapReport(findings, intent, minCategoryFindings)
}

// group accumulates the evidence items that share a category and a
// normalized claim.
type group struct {
	category string
	items    []types.Evidence
}

func (g *group) add(e types.Evidence) { g.items = append(g.items, e) }

func (g *group) finding() types.CompiledFinding {
	// Stable representative claim regardless of arrival order.
	sort.Slice(g.items, func(i, j int) bool { return g.items[i].ID < g.items[j].ID })

	ids := make([]string, 0, len(g.items))
	seen := make(map[types.Citation]bool)
	var citations []types.Citation
	for _, e := range g.items {
		ids = append(ids, e.ID)
		for _, c := range e.Citations {
			if !seen[c] {
				seen[c] = true
				citations = append(citations, c)
			}
		}
	}
	sort.Slice(citations, func(i, j int) bool {
		if citations[i].SourceID != citations[j].SourceID {
			return citations[i].SourceID < citations[j].SourceID
		}
		return citations[i].Locator < citations[j].Locator
	})

	return types.CompiledFinding{
		Category:    g.category,
		Claim:       g.items[0].Claim,
		EvidenceIDs: ids,
		Citations:   citations,
		Confidence:  Confidence(g.items),
	}
}

// Confidence combines per-evidence contributions as independent supports:
// 1 - product(1 - weight*quality). A single weak item yields a low score;
// corroborating items from trusted sources push it toward 1 without ever
// reaching it.
func Confidence(items []types.Evidence) float64 {
	doubt := 1.0
	for _, e := range items {
		contribution := e.TrustWeight * e.Quality
		if contribution < 0 {
			contribution = 0
		}
		if contribution > 1 {
			contribution = 1
		}
		doubt *= 1 - contribution
	}
	return 1 - doubt
}

// NormalizeClaim lowercases, strips punctuation, and collapses whitespace
// so trivially reworded duplicates land in the same group.
func NormalizeClaim(claim string) string {
	var b strings.Builder
	b.Grow(len(claim))
	space := false
	for _, r := range strings.ToLower(claim) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}

// gapReport lists every required category whose finding count is below the
// minimum, in sorted category order.
func gapReport(findings []types.CompiledFinding, intent types.ResearchIntent, minCategoryFindings int) types.GapReport {
	if minCategoryFindings < 1 {
		minCategoryFindings = 1
	}
	counts := make(map[string]int)
	for _, f := range findings {
		counts[f.Category]++
	}

	required := append([]string(nil), intent.RequiredCategories...)
	sort.Strings(required)

	var report types.GapReport
	for _, cat := range required {
		if counts[cat] < minCategoryFindings {
			report.Missing = append(report.Missing, types.GapEntry{
				Category:   cat,
				Supporting: counts[cat],
			})
		}
	}
	return report
}
