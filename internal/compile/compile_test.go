// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compile

import (
	"math"
	"reflect"
	"testing"

	"github.com/meshintel/evidence-engine/pkg/types"
)

func ev(id, category, claim string, sourceID string, quality, weight float64) types.Evidence {
	return types.Evidence{
		ID:          id,
		Claim:       claim,
		Category:    category,
		Citations:   []types.Citation{{SourceID: sourceID, Locator: "https://example.com/" + sourceID}},
		Quality:     quality,
		TrustWeight: weight,
	}
}

func acceptAll(evidence []types.Evidence) []types.ValidationResult {
	out := make([]types.ValidationResult, 0, len(evidence))
	for _, e := range evidence {
		out = append(out, types.ValidationResult{EvidenceID: e.ID, Verdict: types.VerdictAccept})
	}
	return out
}

func TestCompileMergesDuplicateClaims(t *testing.T) {
	evidence := []types.Evidence{
		ev("ev-00000001", "capacity", "Solar capacity grew 24% in 2025.", "web-aaaaaa", 0.8, 1.0),
		ev("ev-00000002", "capacity", "solar capacity grew 24 in 2025", "scholarly-bbbbbb", 0.7, 0.6),
		ev("ev-00000003", "cost", "Storage costs fell sharply.", "web-cccccc", 0.6, 0.6),
	}
	intent := types.ResearchIntent{RequiredCategories: []string{"capacity", "cost"}}

	findings, gaps := Compile(evidence, acceptAll(evidence), intent, 1)
	if len(findings) != 2 {
		t.Fatalf("len(findings) = %d, want 2: %+v", len(findings), findings)
	}
	merged := findings[0]
	if merged.Category != "capacity" {
		t.Fatalf("findings not sorted by category: %+v", findings)
	}
	if !reflect.DeepEqual(merged.EvidenceIDs, []string{"ev-00000001", "ev-00000002"}) {
		t.Fatalf("EvidenceIDs = %v", merged.EvidenceIDs)
	}
	if len(merged.Citations) != 2 {
		t.Fatalf("merged citations = %v, want 2 distinct sources", merged.Citations)
	}
	if !gaps.IsEmpty() {
		t.Fatalf("gap report should be empty: %+v", gaps)
	}
}

func TestCompileOrderIndependent(t *testing.T) {
	evidence := []types.Evidence{
		ev("ev-00000001", "capacity", "Solar capacity grew 24% in 2025.", "web-aaaaaa", 0.8, 1.0),
		ev("ev-00000002", "capacity", "solar capacity grew 24 in 2025", "scholarly-bbbbbb", 0.7, 0.6),
		ev("ev-00000003", "cost", "Storage costs fell sharply.", "web-cccccc", 0.6, 0.6),
	}
	reversed := []types.Evidence{evidence[2], evidence[1], evidence[0]}
	intent := types.ResearchIntent{RequiredCategories: []string{"capacity", "cost"}}

	a, _ := Compile(evidence, acceptAll(evidence), intent, 1)
	b, _ := Compile(reversed, acceptAll(reversed), intent, 1)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("compilation depends on evidence order:\n%+v\n%+v", a, b)
	}
}

func TestCompileExcludesNonAccepted(t *testing.T) {
	evidence := []types.Evidence{
		ev("ev-00000001", "capacity", "claim one", "web-aaaaaa", 0.8, 1.0),
		ev("ev-00000002", "capacity", "claim two", "web-aaaaaa", 0.8, 1.0),
		ev("ev-00000003", "capacity", "claim three", "web-aaaaaa", 0.8, 1.0),
	}
	results := []types.ValidationResult{
		{EvidenceID: "ev-00000001", Verdict: types.VerdictAccept},
		{EvidenceID: "ev-00000002", Verdict: types.VerdictReject},
		{EvidenceID: "ev-00000003", Verdict: types.VerdictStale},
	}
	findings, _ := Compile(evidence, results, types.ResearchIntent{}, 1)
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
	if findings[0].EvidenceIDs[0] != "ev-00000001" {
		t.Fatalf("rejected or stale evidence leaked into findings: %+v", findings)
	}
}

func TestCompileGapReport(t *testing.T) {
	evidence := []types.Evidence{
		ev("ev-00000001", "capacity", "claim one", "web-aaaaaa", 0.8, 1.0),
	}
	intent := types.ResearchIntent{RequiredCategories: []string{"policy", "capacity", "cost"}}

	_, gaps := Compile(evidence, acceptAll(evidence), intent, 2)
	want := []types.GapEntry{
		{Category: "capacity", Supporting: 1},
		{Category: "cost", Supporting: 0},
		{Category: "policy", Supporting: 0},
	}
	if !reflect.DeepEqual(gaps.Missing, want) {
		t.Fatalf("gaps = %+v, want %+v", gaps.Missing, want)
	}
}

func TestConfidenceCorroboration(t *testing.T) {
	single := Confidence([]types.Evidence{{Quality: 0.8, TrustWeight: 1.0}})
	if math.Abs(single-0.8) > 1e-9 {
		t.Fatalf("single contribution = %f, want 0.8", single)
	}

	pair := Confidence([]types.Evidence{
		{Quality: 0.8, TrustWeight: 1.0},
		{Quality: 0.5, TrustWeight: 0.6},
	})
	// 1 - (1-0.8)*(1-0.3) = 0.86
	if math.Abs(pair-0.86) > 1e-9 {
		t.Fatalf("pair confidence = %f, want 0.86", pair)
	}
	if pair <= single {
		t.Fatal("corroboration must not lower confidence")
	}
	if pair >= 1 {
		t.Fatal("confidence must stay below 1")
	}
}

func TestNormalizeClaim(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Solar capacity grew 24% in 2025.", "solar capacity grew 24 in 2025"},
		{"  SOLAR   capacity  grew 24 in 2025 ", "solar capacity grew 24 in 2025"},
		{"solar-capacity grew, 24 (in 2025)!", "solar capacity grew 24 in 2025"},
	}
	for _, tc := range cases {
		if got := NormalizeClaim(tc.in); got != tc.want {
			t.Errorf("NormalizeClaim(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
