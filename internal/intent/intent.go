// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intent turns a raw research request into a validated, immutable
// ResearchIntent.
package intent

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"go.yaml.in/yaml/v3"

	"github.com/meshintel/evidence-engine/pkg/types"
)

// RawIntent is the unvalidated payload accepted from a caller (CLI flags or
// an intent file).
type RawIntent struct {
	Topic              string   `yaml:"topic"`
	Keywords           []string `yaml:"keywords,omitempty"`
	RequiredCategories []string `yaml:"required_categories"`

	// RecencyWindow is a Go duration string (e.g. "8760h"). Empty means
	// the pipeline default applies.
	RecencyWindow string `yaml:"recency_window,omitempty"`

	MaxSources int `yaml:"max_sources,omitempty"`
}

const defaultMaxSources = 20

// Normalize validates a raw intent and produces the session's immutable
// ResearchIntent. Keywords are lowercased and deduplicated; missing keywords
// are derived from the topic. An empty topic or empty required-categories
// list is a configuration error.
func Normalize(raw RawIntent, defaults types.PipelineConfig) (types.ResearchIntent, error) {
	topic := strings.TrimSpace(raw.Topic)
	if topic == "" {
		return types.ResearchIntent{}, fmt.Errorf("%w: intent topic is empty", types.ErrConfiguration)
	}

	var categories []string
	seen := make(map[string]bool)
	for _, c := range raw.RequiredCategories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		categories = append(categories, c)
	}
	if len(categories) == 0 {
		return types.ResearchIntent{}, fmt.Errorf("%w: intent requires at least one evidence category", types.ErrConfiguration)
	}

	keywords := normalizeKeywords(raw.Keywords)
	if len(keywords) == 0 {
		keywords = topicKeywords(topic)
	}
	if len(keywords) == 0 {
		return types.ResearchIntent{}, fmt.Errorf("%w: no usable keywords in intent", types.ErrConfiguration)
	}

	window := defaults.RecencyWindow
	if raw.RecencyWindow != "" {
		d, err := time.ParseDuration(raw.RecencyWindow)
		if err != nil {
			return types.ResearchIntent{}, fmt.Errorf("%w: invalid recency_window %q: %v", types.ErrConfiguration, raw.RecencyWindow, err)
		}
		if d < 0 {
			return types.ResearchIntent{}, fmt.Errorf("%w: recency_window must not be negative", types.ErrConfiguration)
		}
		window = d
	}

	maxSources := raw.MaxSources
	if maxSources <= 0 {
		maxSources = defaultMaxSources
	}

	return types.ResearchIntent{
		Topic:              topic,
		Keywords:           keywords,
		RequiredCategories: categories,
		RecencyWindow:      window,
		MaxSources:         maxSources,
	}, nil
}

// LoadFile reads a RawIntent from a YAML intent file.
func LoadFile(path string) (RawIntent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RawIntent{}, fmt.Errorf("reading intent file: %w", err)
	}
	var raw RawIntent
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return RawIntent{}, fmt.Errorf("parsing intent file: %w", err)
	}
	return raw, nil
}

func normalizeKeywords(keywords []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// stopwords are skipped when deriving keywords from the topic.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"by": true, "for": true, "from": true, "how": true, "in": true,
	"is": true, "of": true, "on": true, "or": true, "the": true,
	"to": true, "what": true, "which": true, "with": true,
}

// topicKeywords derives keywords from the topic: lowercased words with
// punctuation stripped, stopwords and short tokens removed.
func topicKeywords(topic string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(topic) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	var out []string
	seen := make(map[string]bool)
	for _, word := range strings.Fields(b.String()) {
		if len(word) < 3 || stopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
	}
	return out
}
