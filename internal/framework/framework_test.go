// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package framework

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/meshintel/evidence-engine/pkg/types"
)

var scoreNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func scoreInput() Input {
	return Input{
		Intent: types.ResearchIntent{
			RequiredCategories: []string{"capacity", "cost", "policy"},
			RecencyWindow:      90 * 24 * time.Hour,
		},
		Findings: []types.CompiledFinding{
			{Category: "capacity", Claim: "capacity grew", EvidenceIDs: []string{"ev-00000001", "ev-00000002"}},
			{Category: "cost", Claim: "costs fell", EvidenceIDs: []string{"ev-00000003"}},
		},
		Gaps: types.GapReport{Missing: []types.GapEntry{{Category: "policy"}}},
		Evidence: map[string]types.Evidence{
			"ev-00000001": {ID: "ev-00000001", ClaimDate: scoreNow.AddDate(0, 0, -9)},
			"ev-00000002": {ID: "ev-00000002", ClaimDate: scoreNow.AddDate(0, 0, -45)},
			"ev-00000003": {ID: "ev-00000003", FetchedAt: scoreNow.AddDate(0, 0, -9)},
		},
		Now: scoreNow,
	}
}

func TestCoverage(t *testing.T) {
	s := Coverage{}.Score(scoreInput())
	if math.Abs(s.Score-10*2.0/3.0) > 1e-9 {
		t.Fatalf("score = %f, want 2/3 of 10", s.Score)
	}
	if want := "2 of 3 required categories covered; missing: [policy]"; s.Rationale != want {
		t.Fatalf("rationale = %q, want %q", s.Rationale, want)
	}
}

func TestCoverageNoRequirements(t *testing.T) {
	in := scoreInput()
	in.Intent.RequiredCategories = nil
	if s := (Coverage{}).Score(in); s.Score != 10 {
		t.Fatalf("score = %f, want 10", s.Score)
	}
}

func TestCorroboration(t *testing.T) {
	s := Corroboration{}.Score(scoreInput())
	if s.Score != 5 {
		t.Fatalf("score = %f, want 5 (1 of 2 findings corroborated)", s.Score)
	}
	if !reflect.DeepEqual(s.CitedEvidence, []string{"ev-00000001", "ev-00000002"}) {
		t.Fatalf("cited = %v", s.CitedEvidence)
	}
}

func TestFreshness(t *testing.T) {
	s := Freshness{}.Score(scoreInput())
	// remaining fractions: 81/90, 45/90, 81/90 -> mean 0.766...
	want := 10 * (81.0/90 + 45.0/90 + 81.0/90) / 3
	if math.Abs(s.Score-want) > 1e-9 {
		t.Fatalf("score = %f, want %f", s.Score, want)
	}
	if !reflect.DeepEqual(s.CitedEvidence, []string{"ev-00000001"}) {
		t.Fatalf("cited = %v, want newest evidence", s.CitedEvidence)
	}
}

func TestFreshnessExpiredEvidence(t *testing.T) {
	in := scoreInput()
	for id, e := range in.Evidence {
		e.ClaimDate = scoreNow.AddDate(-2, 0, 0)
		e.FetchedAt = time.Time{}
		in.Evidence[id] = e
	}
	if s := (Freshness{}).Score(in); s.Score != 0 {
		t.Fatalf("score = %f, want 0 for fully expired evidence", s.Score)
	}
}

func TestScoreAllDeterministicAndBounded(t *testing.T) {
	eng := NewEngine()
	first := eng.ScoreAll(scoreInput())
	second := eng.ScoreAll(scoreInput())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("framework scoring must be deterministic")
	}

	names := make([]string, 0, len(first))
	known := map[string]bool{"ev-00000001": true, "ev-00000002": true, "ev-00000003": true}
	for _, s := range first {
		names = append(names, s.Framework)
		if s.Score < 0 || s.Score > 10 {
			t.Errorf("%s: score %f out of range", s.Framework, s.Score)
		}
		for _, id := range s.CitedEvidence {
			if !known[id] {
				t.Errorf("%s cites %s, which no finding carries", s.Framework, id)
			}
		}
	}
	if !reflect.DeepEqual(names, []string{"corroboration", "coverage", "freshness"}) {
		t.Fatalf("frameworks not sorted by name: %v", names)
	}
}

func TestScoreAllEmptyFindings(t *testing.T) {
	in := scoreInput()
	in.Findings = nil
	for _, s := range NewEngine().ScoreAll(in) {
		if s.Framework == "corroboration" && s.Score != 0 {
			t.Fatalf("corroboration on empty findings = %f, want 0", s.Score)
		}
	}
}
