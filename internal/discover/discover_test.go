// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/meshintel/evidence-engine/internal/connector"
	"github.com/meshintel/evidence-engine/pkg/types"
)

func connectorList(items ...connector.Connector) []connector.Connector { return items }

// --- mock connector ---

type mockConnector struct {
	name    string
	sources []types.CandidateSource
	err     error
}

func (m *mockConnector) Name() string { return m.name }

func (m *mockConnector) Search(_ context.Context, _ types.ResearchIntent) ([]types.CandidateSource, error) {
	return m.sources, m.err
}

func (m *mockConnector) Fetch(_ context.Context, _ types.CandidateSource) (types.RawDocument, error) {
	return types.RawDocument{}, fmt.Errorf("not used")
}

func src(connector, id string) types.CandidateSource {
	return types.CandidateSource{
		ID:        id,
		Connector: connector,
		Locator:   "https://example.com/" + id,
	}
}

func intent(maxSources int) types.ResearchIntent {
	return types.ResearchIntent{
		Topic:              "t",
		Keywords:           []string{"k"},
		RequiredCategories: []string{"c"},
		MaxSources:         maxSources,
	}
}

func TestDiscoverIsolatesConnectorFailure(t *testing.T) {
	conns := connectorList(
		&mockConnector{name: "web", sources: []types.CandidateSource{src("web", "web-1")}},
		&mockConnector{name: "newsfeed", err: fmt.Errorf("boom")},
	)

	var buf bytes.Buffer
	out := Discover(context.Background(), conns, intent(10), nil, &buf)

	if len(out.Sources) != 1 {
		t.Fatalf("len(Sources) = %d, want 1", len(out.Sources))
	}
	if len(out.Statuses) != 2 {
		t.Fatalf("len(Statuses) = %d, want 2", len(out.Statuses))
	}
	// Statuses are sorted by connector name.
	if out.Statuses[0].Connector != "newsfeed" || out.Statuses[0].Err == "" {
		t.Errorf("newsfeed status = %+v, want recorded error", out.Statuses[0])
	}
	if out.Statuses[1].Connector != "web" || out.Statuses[1].Found != 1 {
		t.Errorf("web status = %+v", out.Statuses[1])
	}
	if !strings.Contains(buf.String(), "warning: connector newsfeed") {
		t.Errorf("missing warning line, got %q", buf.String())
	}
}

func TestDiscoverAssignsTiersAndDeduplicates(t *testing.T) {
	dup := src("web", "web-dup")
	conns := connectorList(
		&mockConnector{name: "web", sources: []types.CandidateSource{dup, dup, src("web", "web-2")}},
	)

	out := Discover(context.Background(), conns, intent(10), nil, &bytes.Buffer{})
	if len(out.Sources) != 2 {
		t.Fatalf("len(Sources) = %d, want 2 after dedup", len(out.Sources))
	}
	for _, s := range out.Sources {
		if s.Tier == "" {
			t.Errorf("source %s has no tier assigned", s.ID)
		}
	}
}

func TestDiscoverSkipsKnownSources(t *testing.T) {
	conns := connectorList(
		&mockConnector{name: "web", sources: []types.CandidateSource{src("web", "web-old"), src("web", "web-new")}},
	)
	known := map[string]bool{"web-old": true}

	out := Discover(context.Background(), conns, intent(10), known, &bytes.Buffer{})
	if len(out.Sources) != 1 || out.Sources[0].ID != "web-new" {
		t.Fatalf("Sources = %+v, want only web-new", out.Sources)
	}
}

func TestDiscoverOrderIndependent(t *testing.T) {
	a := &mockConnector{name: "web", sources: []types.CandidateSource{src("web", "web-b"), src("web", "web-a")}}
	b := &mockConnector{name: "newsfeed", sources: []types.CandidateSource{src("newsfeed", "newsfeed-z")}}

	out1 := Discover(context.Background(), connectorList(a, b), intent(10), nil, &bytes.Buffer{})
	out2 := Discover(context.Background(), connectorList(b, a), intent(10), nil, &bytes.Buffer{})

	if len(out1.Sources) != len(out2.Sources) {
		t.Fatalf("different source counts: %d vs %d", len(out1.Sources), len(out2.Sources))
	}
	for i := range out1.Sources {
		if out1.Sources[i].ID != out2.Sources[i].ID {
			t.Errorf("index %d: %q vs %q", i, out1.Sources[i].ID, out2.Sources[i].ID)
		}
	}
}

func TestDiscoverCapsAtMaxSources(t *testing.T) {
	many := make([]types.CandidateSource, 8)
	for i := range many {
		many[i] = src("web", fmt.Sprintf("web-%d", i))
	}
	conns := connectorList(&mockConnector{name: "web", sources: many})

	out := Discover(context.Background(), conns, intent(3), nil, &bytes.Buffer{})
	if len(out.Sources) != 3 {
		t.Errorf("len(Sources) = %d, want 3", len(out.Sources))
	}
}

// When the cap bites, higher-tier sources must survive it.
func TestDiscoverCapKeepsMostTrusted(t *testing.T) {
	pub := func(id, publisher string) types.CandidateSource {
		s := src("web", id)
		s.Publisher = publisher
		return s
	}
	conns := connectorList(&mockConnector{name: "web", sources: []types.CandidateSource{
		pub("web-1", "blog.example.com"), // low
		pub("web-2", "energy.gov"),       // high
		pub("web-3", "example.org"),      // medium
		pub("web-4", "mit.edu"),          // high
		pub("web-5", "blog.example.com"), // low
	}})

	out := Discover(context.Background(), conns, intent(3), nil, &bytes.Buffer{})
	if len(out.Sources) != 3 {
		t.Fatalf("len(Sources) = %d, want 3", len(out.Sources))
	}
	want := []string{"web-2", "web-3", "web-4"}
	for i, s := range out.Sources {
		if s.ID != want[i] {
			t.Errorf("Sources[%d] = %q, want %q", i, s.ID, want[i])
		}
	}
}

// MaxSources bounds the session total, not the per-round yield: sources
// discovered in earlier rounds consume the budget.
func TestDiscoverCapCountsKnownSources(t *testing.T) {
	conns := connectorList(&mockConnector{name: "web", sources: []types.CandidateSource{
		src("web", "web-1"), src("web", "web-2"), src("web", "web-3"), src("web", "web-4"),
	}})
	known := map[string]bool{"old-1": true, "old-2": true}

	out := Discover(context.Background(), conns, intent(3), known, &bytes.Buffer{})
	if len(out.Sources) != 1 {
		t.Fatalf("len(Sources) = %d, want 1 (budget 3 minus 2 known)", len(out.Sources))
	}

	exhausted := map[string]bool{"old-1": true, "old-2": true, "old-3": true}
	out = Discover(context.Background(), conns, intent(3), exhausted, &bytes.Buffer{})
	if len(out.Sources) != 0 {
		t.Fatalf("len(Sources) = %d, want 0 with exhausted budget", len(out.Sources))
	}
}

func TestAssignTier(t *testing.T) {
	tests := []struct {
		name string
		src  types.CandidateSource
		want types.TrustTier
	}{
		{"gov publisher", types.CandidateSource{Connector: "web", Publisher: "energy.gov"}, types.TrustHigh},
		{"edu publisher", types.CandidateSource{Connector: "newsfeed", Publisher: "mit.edu"}, types.TrustHigh},
		{"peer reviewed scholarly", types.CandidateSource{Connector: "scholarly", PeerReviewed: true}, types.TrustHigh},
		{"preprint scholarly", types.CandidateSource{Connector: "scholarly"}, types.TrustMedium},
		{"newsfeed with publisher", types.CandidateSource{Connector: "newsfeed", Publisher: "Example News"}, types.TrustMedium},
		{"newsfeed without publisher", types.CandidateSource{Connector: "newsfeed"}, types.TrustLow},
		{"org web", types.CandidateSource{Connector: "web", Publisher: "example.org"}, types.TrustMedium},
		{"plain web", types.CandidateSource{Connector: "web", Publisher: "blog.example.com"}, types.TrustLow},
		{"unknown connector", types.CandidateSource{Connector: "ftp"}, types.TrustLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssignTier(tt.src); got != tt.want {
				t.Errorf("AssignTier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrustTierWeights(t *testing.T) {
	if types.TrustHigh.Weight() <= types.TrustMedium.Weight() ||
		types.TrustMedium.Weight() <= types.TrustLow.Weight() {
		t.Errorf("tier weights not strictly ordered: %v %v %v",
			types.TrustHigh.Weight(), types.TrustMedium.Weight(), types.TrustLow.Weight())
	}
}
