// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package framework applies decision frameworks to compiled findings.
// A framework is a pure function: same findings in, same score out. No
// framework fetches anything or mutates its input.
package framework

import (
	"fmt"
	"sort"
	"time"

	"github.com/meshintel/evidence-engine/pkg/types"
)

// Input is the read-only view a framework scores against.
type Input struct {
	Intent   types.ResearchIntent
	Findings []types.CompiledFinding
	Gaps     types.GapReport

	// Evidence maps accepted evidence IDs to the items behind the
	// findings, for frameworks that need dates or quality.
	Evidence map[string]types.Evidence

	// Now anchors age computations; tests pin it.
	Now time.Time
}

// Framework scores one aspect of the compiled findings on a 0-10 scale.
type Framework interface {
	Name() string
	Score(in Input) types.FrameworkScore
}

// Engine runs a fixed set of frameworks over one input.
type Engine struct {
	frameworks []Framework
}

// NewEngine returns an engine with the standard frameworks: coverage,
// corroboration, freshness.
func NewEngine() *Engine {
	return &Engine{frameworks: []Framework{Coverage{}, Corroboration{}, Freshness{}}}
}

// ScoreAll applies every framework and returns scores sorted by framework
// name. Scores are clamped to [0,10] and cited evidence is filtered down to
// IDs actually present in the findings.
func (e *Engine) ScoreAll(in Input) []types.FrameworkScore {
	known := make(map[string]bool)
	for _, f := range in.Findings {
		for _, id := range f.EvidenceIDs {
			known[id] = true
		}
	}

	out := make([]types.FrameworkScore, 0, len(e.frameworks))
	for _, fw := range e.frameworks {
		s := fw.Score(in)
		s.Framework = fw.Name()
		if s.Score < 0 {
			s.Score = 0
		}
		if s.Score > 10 {
			s.Score = 10
		}
		cited := s.CitedEvidence[:0]
		for _, id := range s.CitedEvidence {
			if known[id] {
				cited = append(cited, id)
			}
		}
		sort.Strings(cited)
		s.CitedEvidence = cited
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Framework < out[j].Framework })
	return out
}

// Coverage scores the fraction of the intent's required categories that
// have at least one finding.
type Coverage struct{}

func (Coverage) Name() string { return "coverage" }

func (Coverage) Score(in Input) types.FrameworkScore {
	required := len(in.Intent.RequiredCategories)
	if required == 0 {
		return types.FrameworkScore{
			Score:     10,
			Rationale: "no required categories declared; coverage is trivially complete",
		}
	}

	covered := make(map[string]bool)
	for _, f := range in.Findings {
		covered[f.Category] = true
	}
	var missing []string
	hit := 0
	for _, cat := range in.Intent.RequiredCategories {
		if covered[cat] {
			hit++
		} else {
			missing = append(missing, cat)
		}
	}
	sort.Strings(missing)

	score := 10 * float64(hit) / float64(required)
	rationale := fmt.Sprintf("%d of %d required categories covered", hit, required)
	if len(missing) > 0 {
		rationale += fmt.Sprintf("; missing: %v", missing)
	}
	return types.FrameworkScore{Score: score, Rationale: rationale}
}

// Corroboration scores the fraction of findings backed by more than one
// evidence item, citing the corroborated findings' evidence.
type Corroboration struct{}

func (Corroboration) Name() string { return "corroboration" }

func (Corroboration) Score(in Input) types.FrameworkScore {
	if len(in.Findings) == 0 {
		return types.FrameworkScore{Score: 0, Rationale: "no findings to corroborate"}
	}

	var cited []string
	corroborated := 0
	for _, f := range in.Findings {
		if len(f.EvidenceIDs) > 1 {
			corroborated++
			cited = append(cited, f.EvidenceIDs...)
		}
	}
	score := 10 * float64(corroborated) / float64(len(in.Findings))
	return types.FrameworkScore{
		Score:         score,
		Rationale:     fmt.Sprintf("%d of %d findings supported by multiple evidence items", corroborated, len(in.Findings)),
		CitedEvidence: cited,
	}
}

// Freshness scores how much of the recency window the supporting evidence
// has left, averaged over all cited evidence. A zero window scores 10.
type Freshness struct{}

func (Freshness) Name() string { return "freshness" }

func (Freshness) Score(in Input) types.FrameworkScore {
	if in.Intent.RecencyWindow <= 0 {
		return types.FrameworkScore{Score: 10, Rationale: "no recency window declared"}
	}

	var total float64
	var n int
	newest := ""
	var newestAt time.Time
	for _, f := range in.Findings {
		for _, id := range f.EvidenceIDs {
			e, ok := in.Evidence[id]
			if !ok {
				continue
			}
			at := e.ClaimDate
			if at.IsZero() {
				at = e.FetchedAt
			}
			age := in.Now.Sub(at)
			remaining := 1 - float64(age)/float64(in.Intent.RecencyWindow)
			if remaining < 0 {
				remaining = 0
			}
			if remaining > 1 {
				remaining = 1
			}
			total += remaining
			n++
			if newest == "" || at.After(newestAt) {
				newest, newestAt = id, at
			}
		}
	}
	if n == 0 {
		return types.FrameworkScore{Score: 0, Rationale: "no dated evidence behind findings"}
	}

	score := 10 * total / float64(n)
	fs := types.FrameworkScore{
		Score:     score,
		Rationale: fmt.Sprintf("evidence retains %.0f%% of the recency window on average", 100*total/float64(n)),
	}
	if newest != "" {
		fs.CitedEvidence = []string{newest}
	}
	return fs
}
