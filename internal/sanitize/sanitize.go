// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sanitize neutralizes instruction-like text embedded in gathered
// content before any extraction or summarization capability consumes it.
// Sanitization only transforms content — it never acts on anything it finds.
package sanitize

import (
	"regexp"
	"sort"

	"github.com/meshintel/evidence-engine/pkg/types"
)

// Replacement is the marker substituted for each matched directive.
const Replacement = "[redacted-directive]"

// pattern pairs a name (reported downstream) with its compiled expression.
type pattern struct {
	name string
	re   *regexp.Regexp
}

// patterns is the fixed set of directive shapes the sanitizer strips.
// Matching is case-insensitive and tolerant of filler words between the
// verb and its object.
var patterns = []pattern{
	{"ignore-previous", regexp.MustCompile(`(?i)\b(ignore|disregard|forget)\b[^.\n]{0,40}\b(previous|prior|above|all|earlier)\b[^.\n]{0,40}\b(instructions?|directives?|prompts?|rules?|context)\b`)},
	{"role-override", regexp.MustCompile(`(?i)\byou\s+are\s+(now|no\s+longer)\b[^.\n]{0,80}`)},
	{"act-as", regexp.MustCompile(`(?i)\b(act|behave|respond)\s+as\s+(if\s+you\s+(are|were)\s+)?(a|an|the)?\s*(system|admin|administrator|developer|root|jailbroken)\b[^.\n]{0,60}`)},
	{"system-prompt", regexp.MustCompile(`(?i)\b(system|developer)\s+(prompt|message|instructions?)\b[^.\n]{0,60}`)},
	{"reveal-prompt", regexp.MustCompile(`(?i)\b(reveal|print|repeat|output|show)\b[^.\n]{0,40}\b(your|the)\s+(system\s+)?(prompt|instructions?)\b`)},
	{"new-instructions", regexp.MustCompile(`(?i)\b(new|updated|real|true)\s+instructions?\s*:`)},
	{"special-token", regexp.MustCompile(`<\|[a-zA-Z_|-]+\|>`)},
	{"do-anything", regexp.MustCompile(`(?i)\byou\s+(can|must|will)\s+do\s+anything\b[^.\n]{0,60}`)},
}

// Sanitize scans a raw document for directive-like patterns, strips each
// match, and returns the sanitized document with the triggered flag and the
// names of the patterns that fired. Triggering is a warning, never fatal.
func Sanitize(doc types.RawDocument) types.SanitizedDocument {
	content := doc.Content
	matchedSet := make(map[string]bool)

	for _, p := range patterns {
		if !p.re.MatchString(content) {
			continue
		}
		matchedSet[p.name] = true
		content = p.re.ReplaceAllString(content, Replacement)
	}

	var matched []string
	for name := range matchedSet {
		matched = append(matched, name)
	}
	sort.Strings(matched)

	return types.SanitizedDocument{
		SourceID:              doc.SourceID,
		Locator:               doc.Locator,
		Content:               content,
		FetchedAt:             doc.FetchedAt,
		SanitizationTriggered: len(matched) > 0,
		MatchedPatterns:       matched,
	}
}

// SanitizeAll sanitizes a batch of documents, preserving order.
func SanitizeAll(docs []types.RawDocument) []types.SanitizedDocument {
	out := make([]types.SanitizedDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, Sanitize(d))
	}
	return out
}
