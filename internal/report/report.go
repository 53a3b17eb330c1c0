// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles the final citation-backed research report. It
// fails closed: a gap report larger than the configured threshold aborts
// generation unless the caller explicitly allows a gap override.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/meshintel/evidence-engine/pkg/types"
)

// Inputs collects everything a finished session hands to the generator.
type Inputs struct {
	SessionID string
	Intent    types.ResearchIntent
	Findings  []types.CompiledFinding
	Scores    []types.FrameworkScore
	Gaps      types.GapReport
	Audit     types.MetaAuditVerdict
	Rounds    int
	MaxRounds int

	// Degraded is set when gathering lost more sources than the
	// configured failure ratio allows.
	Degraded bool

	// Now stamps GeneratedAt; tests pin it. Zero means time.Now.
	Now time.Time
}

// Generate builds the report, or refuses with ErrInsufficientEvidence when
// the gap report exceeds the threshold and overrides are off. Every caveat
// the session accumulated is carried into the report rather than silently
// dropped.
func Generate(in Inputs, cfg types.ReportConfig, gapThreshold int) (*types.ResearchReport, error) {
	if len(in.Gaps.Missing) > gapThreshold && !cfg.AllowGapOverride {
		return nil, fmt.Errorf("%w: %d required categories unmet (threshold %d)",
			types.ErrInsufficientEvidence, len(in.Gaps.Missing), gapThreshold)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	r := &types.ResearchReport{
		SessionID:   in.SessionID,
		Intent:      in.Intent,
		Findings:    in.Findings,
		Scores:      in.Scores,
		Gaps:        in.Gaps,
		Audit:       in.Audit,
		Rounds:      in.Rounds,
		GeneratedAt: now,
	}

	if !in.Gaps.IsEmpty() {
		cats := make([]string, 0, len(in.Gaps.Missing))
		for _, g := range in.Gaps.Missing {
			cats = append(cats, g.Category)
		}
		r.Caveats = append(r.Caveats, fmt.Sprintf(
			"insufficient evidence after %d of %d rounds for: %s",
			in.Rounds, in.MaxRounds, strings.Join(cats, ", ")))
	}
	if len(in.Gaps.Missing) > gapThreshold {
		r.Caveats = append(r.Caveats, "gap threshold exceeded; report generated under explicit override")
	}
	if in.Audit.Disposition == types.AuditContradictory {
		r.Caveats = append(r.Caveats, types.ErrContradictoryFindings.Error()+": see audit notes")
	}
	if in.Degraded {
		r.Caveats = append(r.Caveats, "gathering was degraded; some discovered sources were never fetched")
	}
	return r, nil
}

// RenderMarkdown renders the report for human readers. Every finding lists
// its citations inline so claims stay traceable to sources.
func RenderMarkdown(r *types.ResearchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Research Report: %s\n\n", r.Intent.Topic)
	fmt.Fprintf(&b, "Session %s, %d round(s), generated %s.\n\n",
		r.SessionID, r.Rounds, r.GeneratedAt.Format("2006-01-02 15:04 MST"))

	if len(r.Caveats) > 0 {
		b.WriteString("## Caveats\n\n")
		for _, c := range r.Caveats {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Findings\n\n")
	if len(r.Findings) == 0 {
		b.WriteString("No findings met validation.\n\n")
	}
	for _, cat := range findingCategories(r.Findings) {
		fmt.Fprintf(&b, "### %s\n\n", cat)
		for _, f := range r.Findings {
			if f.Category != cat {
				continue
			}
			fmt.Fprintf(&b, "- %s (confidence %.2f)\n", f.Claim, f.Confidence)
			for _, c := range f.Citations {
				fmt.Fprintf(&b, "  - [%s] %s\n", c.SourceID, c.Locator)
			}
		}
		b.WriteString("\n")
	}

	if len(r.Scores) > 0 {
		b.WriteString("## Framework Scores\n\n")
		b.WriteString("| Framework | Score | Rationale |\n|---|---|---|\n")
		for _, s := range r.Scores {
			fmt.Fprintf(&b, "| %s | %.1f | %s |\n", s.Framework, s.Score, s.Rationale)
		}
		b.WriteString("\n")
	}

	if !r.Gaps.IsEmpty() {
		b.WriteString("## Gaps\n\n")
		for _, g := range r.Gaps.Missing {
			fmt.Fprintf(&b, "- %s: %d supporting finding(s)\n", g.Category, g.Supporting)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Audit\n\nRound %d: %s\n", r.Audit.Round, r.Audit.Disposition)
	for _, n := range r.Audit.Notes {
		fmt.Fprintf(&b, "- %s\n", n)
	}
	return b.String()
}

// findingCategories returns the distinct categories in first-appearance
// order; findings arrive already sorted by category.
func findingCategories(findings []types.CompiledFinding) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range findings {
		if !seen[f.Category] {
			seen[f.Category] = true
			out = append(out, f.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Write persists the report under cfg.OutputDir as both Markdown and YAML,
// returning the Markdown path.
func Write(r *types.ResearchReport, cfg types.ReportConfig) (string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	mdPath := filepath.Join(cfg.OutputDir, r.SessionID+".md")
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(r)), 0o644); err != nil {
		return "", fmt.Errorf("writing markdown report: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	yamlPath := filepath.Join(cfg.OutputDir, r.SessionID+".yaml")
	if err := os.WriteFile(yamlPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing yaml report: %w", err)
	}
	return mdPath, nil
}
