// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meshintel/evidence-engine/internal/httputil"
	"github.com/meshintel/evidence-engine/pkg/types"
)

// defaultWebIndexBase is the default web index search endpoint. Overridden
// per deployment (and in tests) via ConnectorConfig.Endpoint.
const defaultWebIndexBase = "https://index.meshintel.dev/api/v1/search"

// WebConnector queries a generic web index and fetches pages.
type WebConnector struct {
	Client *http.Client
	Config types.ConnectorConfig
}

// NewWebConnector builds a web connector with a client honoring the
// configured fetch timeout.
func NewWebConnector(cfg types.ConnectorConfig) *WebConnector {
	return &WebConnector{
		Client: &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
	}
}

// Name returns the connector type identifier.
func (c *WebConnector) Name() string { return "web" }

// webIndexResponse is the JSON shape of the web index search API.
type webIndexResponse struct {
	Results []webIndexResult `json:"results"`
}

type webIndexResult struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Published string `json:"published"`
}

// Search queries the web index with the intent keywords.
func (c *WebConnector) Search(ctx context.Context, intent types.ResearchIntent) ([]types.CandidateSource, error) {
	base := c.Config.Endpoint
	if base == "" {
		base = defaultWebIndexBase
	}

	params := url.Values{
		"q":     {strings.Join(intent.Keywords, " ")},
		"limit": {fmt.Sprintf("%d", intent.MaxSources)},
	}
	reqURL := base + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.Config.UserAgent)
	if c.Config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.Config.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.Config.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("web index request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web index returned HTTP %d", resp.StatusCode)
	}

	var parsed webIndexResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing web index response: %w", err)
	}

	var sources []types.CandidateSource
	for _, r := range parsed.Results {
		if r.URL == "" {
			continue
		}
		s := types.CandidateSource{
			ID:        SourceID(c.Name(), r.URL),
			Connector: c.Name(),
			Locator:   r.URL,
			Title:     r.Title,
			Publisher: publisherOf(r.Publisher, r.URL),
		}
		if t, parseErr := time.Parse(time.RFC3339, r.Published); parseErr == nil {
			s.PublishedAt = t
		}
		sources = append(sources, s)
	}
	return sources, nil
}

// Fetch retrieves the page behind a candidate source.
func (c *WebConnector) Fetch(ctx context.Context, source types.CandidateSource) (types.RawDocument, error) {
	return fetchDocument(ctx, c.Client, source.ID, source.Locator, c.Config.UserAgent)
}

// publisherOf prefers the index-reported publisher, falling back to the
// locator's host.
func publisherOf(publisher, rawURL string) string {
	if publisher != "" {
		return publisher
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
