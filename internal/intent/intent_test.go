// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intent

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/meshintel/evidence-engine/pkg/types"
)

func defaults() types.PipelineConfig {
	return types.DefaultPipelineConfig()
}

func TestNormalizeValid(t *testing.T) {
	raw := RawIntent{
		Topic:              "Grid-scale battery storage economics",
		Keywords:           []string{"Battery", "storage", "battery"},
		RequiredCategories: []string{"Cost", "deployment", "COST"},
		RecencyWindow:      "720h",
		MaxSources:         10,
	}

	got, err := Normalize(raw, defaults())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if got.Topic != "Grid-scale battery storage economics" {
		t.Errorf("Topic = %q", got.Topic)
	}
	if want := []string{"battery", "storage"}; !reflect.DeepEqual(got.Keywords, want) {
		t.Errorf("Keywords = %v, want %v", got.Keywords, want)
	}
	if want := []string{"cost", "deployment"}; !reflect.DeepEqual(got.RequiredCategories, want) {
		t.Errorf("RequiredCategories = %v, want %v", got.RequiredCategories, want)
	}
	if got.RecencyWindow != 720*time.Hour {
		t.Errorf("RecencyWindow = %v", got.RecencyWindow)
	}
	if got.MaxSources != 10 {
		t.Errorf("MaxSources = %d", got.MaxSources)
	}
}

func TestNormalizeDerivesKeywordsFromTopic(t *testing.T) {
	raw := RawIntent{
		Topic:              "What is the state of offshore wind in Europe?",
		RequiredCategories: []string{"capacity"},
	}

	got, err := Normalize(raw, defaults())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	want := []string{"state", "offshore", "wind", "europe"}
	if !reflect.DeepEqual(got.Keywords, want) {
		t.Errorf("Keywords = %v, want %v", got.Keywords, want)
	}
}

func TestNormalizeRejections(t *testing.T) {
	tests := []struct {
		name string
		raw  RawIntent
	}{
		{"empty topic", RawIntent{RequiredCategories: []string{"a"}}},
		{"whitespace topic", RawIntent{Topic: "   ", RequiredCategories: []string{"a"}}},
		{"no categories", RawIntent{Topic: "solar"}},
		{"blank categories", RawIntent{Topic: "solar", RequiredCategories: []string{" ", ""}}},
		{"bad window", RawIntent{Topic: "solar", RequiredCategories: []string{"a"}, RecencyWindow: "soon"}},
		{"negative window", RawIntent{Topic: "solar", RequiredCategories: []string{"a"}, RecencyWindow: "-24h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw, defaults())
			if !errors.Is(err, types.ErrConfiguration) {
				t.Errorf("Normalize() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	raw := RawIntent{Topic: "solar adoption", RequiredCategories: []string{"policy"}}

	cfg := defaults()
	got, err := Normalize(raw, cfg)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got.RecencyWindow != cfg.RecencyWindow {
		t.Errorf("RecencyWindow = %v, want pipeline default %v", got.RecencyWindow, cfg.RecencyWindow)
	}
	if got.MaxSources != defaultMaxSources {
		t.Errorf("MaxSources = %d, want %d", got.MaxSources, defaultMaxSources)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intent.yaml")
	content := `topic: heat pump adoption
keywords: [heat pump, subsidy]
required_categories: [cost, policy]
recency_window: 4380h
max_sources: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	raw, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if raw.Topic != "heat pump adoption" {
		t.Errorf("Topic = %q", raw.Topic)
	}
	if len(raw.Keywords) != 2 || len(raw.RequiredCategories) != 2 {
		t.Errorf("parsed %v / %v", raw.Keywords, raw.RequiredCategories)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile() on missing file: expected error")
	}
}
