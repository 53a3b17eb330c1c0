// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract derives atomic citable evidence from sanitized documents.
// A claim that cannot be tied to its source is discarded here rather than
// emitted uncited; the validator enforces the same rule again downstream.
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/meshintel/evidence-engine/pkg/types"
)

// CategoryGeneral is assigned to claims that match no required category.
// General findings never satisfy a required category's gap check.
const CategoryGeneral = "general"

// Extractor is the summarizer/extractor capability consumed by this stage.
// Implementations must be deterministic for identical input.
type Extractor interface {
	Extract(ctx context.Context, doc types.SanitizedDocument, source types.CandidateSource, intent types.ResearchIntent) ([]types.Evidence, error)
}

// EvidenceID derives a stable identifier from the source ID and claim
// text, so re-extracting unchanged content yields the same evidence ID.
func EvidenceID(sourceID, claim string) string {
	sum := sha256.Sum256([]byte(sourceID + "|" + claim))
	return "ev-" + hex.EncodeToString(sum[:8])
}

// ExtractAll runs the extractor over a batch of sanitized documents.
// Documents whose source is not in the session's discovery results are
// skipped with a warning, and per-document extraction errors are isolated.
func ExtractAll(ctx context.Context, ex Extractor, docs []types.SanitizedDocument, sources map[string]types.CandidateSource, intent types.ResearchIntent, w io.Writer) []types.Evidence {
	var all []types.Evidence
	for _, doc := range docs {
		src, ok := sources[doc.SourceID]
		if !ok {
			fmt.Fprintf(w, "warning: document %s has no discovered source, skipped\n", doc.SourceID)
			continue
		}

		items, err := ex.Extract(ctx, doc, src, intent)
		if err != nil {
			fmt.Fprintf(w, "warning: extraction failed for %s: %v\n", doc.SourceID, err)
			continue
		}

		for _, e := range items {
			if len(e.Citations) == 0 {
				// Enforced here and again at validation.
				fmt.Fprintf(w, "warning: uncited claim from %s discarded\n", doc.SourceID)
				continue
			}
			all = append(all, e)
		}
	}
	return all
}

// RuleBased is a deterministic keyword-driven extractor used when no
// external summarizer capability is configured. The same sanitized input
// always yields the same evidence set.
type RuleBased struct {
	// MinSentenceLen drops fragments shorter than this many characters.
	MinSentenceLen int
}

// NewRuleBased returns a rule-based extractor with defaults.
func NewRuleBased() *RuleBased {
	return &RuleBased{MinSentenceLen: 30}
}

// Extract splits the document into sentences, keeps those mentioning an
// intent keyword, and builds one cited evidence item per kept sentence.
func (r *RuleBased) Extract(_ context.Context, doc types.SanitizedDocument, source types.CandidateSource, intent types.ResearchIntent) ([]types.Evidence, error) {
	if doc.SourceID == "" {
		return nil, fmt.Errorf("document has no source reference")
	}

	var evidence []types.Evidence
	seen := make(map[string]bool)

	for _, sentence := range splitSentences(doc.Content) {
		if len(sentence) < r.MinSentenceLen {
			continue
		}
		matched := matchedKeywords(sentence, intent.Keywords)
		if matched == 0 {
			continue
		}

		claim := strings.TrimSpace(sentence)
		id := EvidenceID(doc.SourceID, claim)
		if seen[id] {
			continue
		}
		seen[id] = true

		e := types.Evidence{
			ID:       id,
			Claim:    claim,
			Category: categorize(claim, intent.RequiredCategories),
			Citations: []types.Citation{
				{SourceID: source.ID, Locator: source.Locator},
			},
			ClaimDate:   ExtractDate(claim),
			FetchedAt:   doc.FetchedAt,
			Quality:     confidence(matched, len(intent.Keywords), claim),
			TrustWeight: source.Tier.Weight(),
		}
		evidence = append(evidence, e)
	}
	return evidence, nil
}

// splitSentences breaks text on sentence-ending punctuation and newlines.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		switch r {
		case '.', '!', '?', '\n':
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func matchedKeywords(sentence string, keywords []string) int {
	lower := strings.ToLower(sentence)
	n := 0
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			n++
		}
	}
	return n
}

// categorize assigns the first required category (in intent order) whose
// label appears in the claim.
func categorize(claim string, categories []string) string {
	lower := strings.ToLower(claim)
	for _, c := range categories {
		if strings.Contains(lower, c) {
			return c
		}
	}
	return CategoryGeneral
}

// confidence scores a claim by keyword coverage, boosted slightly when the
// claim carries its own date. Clamped to [0.3, 0.95].
func confidence(matched, total int, claim string) float64 {
	if total == 0 {
		return 0.3
	}
	score := 0.4 + 0.5*float64(matched)/float64(total)
	if !ExtractDate(claim).IsZero() {
		score += 0.1
	}
	if score > 0.95 {
		score = 0.95
	}
	if score < 0.3 {
		score = 0.3
	}
	return score
}
