// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package connector

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meshintel/evidence-engine/internal/httputil"
	"github.com/meshintel/evidence-engine/pkg/types"
)

// defaultScholarlyBase is the default scholarly Atom feed endpoint.
const defaultScholarlyBase = "https://export.arxiv.org/api/query"

// ScholarlyConnector queries an arXiv-style Atom feed for academic sources.
// Results carry the peer-review provenance signal used by trust rules.
type ScholarlyConnector struct {
	Client *http.Client
	Config types.ConnectorConfig
}

// NewScholarlyConnector builds a scholarly connector with a client honoring
// the configured fetch timeout.
func NewScholarlyConnector(cfg types.ConnectorConfig) *ScholarlyConnector {
	return &ScholarlyConnector{
		Client: &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
	}
}

// Name returns the connector type identifier.
func (c *ScholarlyConnector) Name() string { return "scholarly" }

// Atom feed XML structures.
type scholarlyFeed struct {
	Entries []scholarlyEntry `xml:"entry"`
}

type scholarlyEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Published string `xml:"published"`
	Journal   string `xml:"journal_ref"`
}

// Search queries the Atom feed for papers matching the intent keywords.
func (c *ScholarlyConnector) Search(ctx context.Context, intent types.ResearchIntent) ([]types.CandidateSource, error) {
	base := c.Config.Endpoint
	if base == "" {
		base = defaultScholarlyBase
	}

	query := url.QueryEscape("all:" + strings.Join(intent.Keywords, " AND all:"))
	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		base, query, intent.MaxSources)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.Config.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("scholarly feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scholarly feed returned HTTP %d", resp.StatusCode)
	}

	var feed scholarlyFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing scholarly feed: %w", err)
	}

	var sources []types.CandidateSource
	for _, entry := range feed.Entries {
		locator := strings.TrimSpace(entry.ID)
		if locator == "" {
			continue
		}
		s := types.CandidateSource{
			ID:           SourceID(c.Name(), locator),
			Connector:    c.Name(),
			Locator:      locator,
			Title:        strings.TrimSpace(entry.Title),
			Publisher:    strings.TrimSpace(entry.Journal),
			PeerReviewed: strings.TrimSpace(entry.Journal) != "",
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			s.PublishedAt = t
		}
		sources = append(sources, s)
	}
	return sources, nil
}

// Fetch retrieves the abstract page behind a candidate source.
func (c *ScholarlyConnector) Fetch(ctx context.Context, source types.CandidateSource) (types.RawDocument, error) {
	return fetchDocument(ctx, c.Client, source.ID, source.Locator, c.Config.UserAgent)
}
