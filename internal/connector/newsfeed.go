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

// defaultNewsfeedBase is the default news aggregation API endpoint.
const defaultNewsfeedBase = "https://newsfeed.meshintel.dev/api/v2/everything"

// NewsfeedConnector queries a news aggregation API for recent coverage.
type NewsfeedConnector struct {
	Client *http.Client
	Config types.ConnectorConfig
}

// NewNewsfeedConnector builds a newsfeed connector with a client honoring
// the configured fetch timeout.
func NewNewsfeedConnector(cfg types.ConnectorConfig) *NewsfeedConnector {
	return &NewsfeedConnector{
		Client: &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
	}
}

// Name returns the connector type identifier.
func (c *NewsfeedConnector) Name() string { return "newsfeed" }

// newsfeedResponse is the JSON shape of the news API.
type newsfeedResponse struct {
	Articles []newsfeedArticle `json:"articles"`
}

type newsfeedArticle struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	SourceName  string `json:"source_name"`
	PublishedAt string `json:"published_at"`
}

// Search queries the news API with the intent keywords.
func (c *NewsfeedConnector) Search(ctx context.Context, intent types.ResearchIntent) ([]types.CandidateSource, error) {
	base := c.Config.Endpoint
	if base == "" {
		base = defaultNewsfeedBase
	}

	params := url.Values{
		"q":        {strings.Join(intent.Keywords, " OR ")},
		"pageSize": {fmt.Sprintf("%d", intent.MaxSources)},
		"sortBy":   {"relevancy"},
	}
	reqURL := base + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.Config.UserAgent)
	if c.Config.APIKey != "" {
		req.Header.Set("X-Api-Key", c.Config.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.Config.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("newsfeed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsfeed returned HTTP %d", resp.StatusCode)
	}

	var parsed newsfeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing newsfeed response: %w", err)
	}

	var sources []types.CandidateSource
	for _, a := range parsed.Articles {
		if a.URL == "" {
			continue
		}
		s := types.CandidateSource{
			ID:        SourceID(c.Name(), a.URL),
			Connector: c.Name(),
			Locator:   a.URL,
			Title:     a.Title,
			Publisher: publisherOf(a.SourceName, a.URL),
		}
		if t, parseErr := time.Parse(time.RFC3339, a.PublishedAt); parseErr == nil {
			s.PublishedAt = t
		}
		sources = append(sources, s)
	}
	return sources, nil
}

// Fetch retrieves the article behind a candidate source.
func (c *NewsfeedConnector) Fetch(ctx context.Context, source types.CandidateSource) (types.RawDocument, error) {
	return fetchDocument(ctx, c.Client, source.ID, source.Locator, c.Config.UserAgent)
}
