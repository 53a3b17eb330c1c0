// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package connector implements the gatherer capability for each connector
// type: discovery queries and single-shot document fetches. One connector
// is registered per type at session configuration; the gatherer pool owns
// retries and rate limits, so Fetch makes exactly one attempt and
// classifies its failure as transient or permanent.
package connector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meshintel/evidence-engine/pkg/types"
)

// Connector searches for candidate sources and fetches their content.
// Each connector type (web, scholarly, newsfeed) implements this interface
// per the Strategy pattern.
type Connector interface {
	// Name returns the connector type identifier.
	Name() string

	// Search queries the connector's index for sources matching the
	// intent. Trust tiers are assigned later by discovery rules, not here.
	Search(ctx context.Context, intent types.ResearchIntent) ([]types.CandidateSource, error)

	// Fetch retrieves the content behind one candidate source. Failures
	// are returned as *types.FetchError so the pool can decide whether
	// to retry.
	Fetch(ctx context.Context, source types.CandidateSource) (types.RawDocument, error)
}

// SourceID derives a stable source identifier from the connector name and
// locator, so repeated discovery of the same source converges on one ID.
func SourceID(connectorName, locator string) string {
	sum := sha256.Sum256([]byte(locator))
	return connectorName + "-" + hex.EncodeToString(sum[:6])
}

// maxBodyBytes caps fetched document size.
const maxBodyBytes = 2 << 20

// fetchDocument performs a single GET of url and builds a RawDocument.
// Non-2xx statuses and request errors come back as *types.FetchError with
// the transient flag set for timeouts, 429, and 5xx.
func fetchDocument(ctx context.Context, client *http.Client, sourceID, url, userAgent string) (types.RawDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.RawDocument{}, &types.FetchError{Err: fmt.Errorf("creating request: %w", err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		// Network errors and timeouts are worth retrying.
		return types.RawDocument{}, &types.FetchError{Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return types.RawDocument{}, &types.FetchError{
			StatusCode: resp.StatusCode,
			Transient:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
			Err:        fmt.Errorf("%s", http.StatusText(resp.StatusCode)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return types.RawDocument{}, &types.FetchError{Transient: true, Err: fmt.Errorf("reading body: %w", err)}
	}

	return types.RawDocument{
		SourceID:  sourceID,
		Locator:   url,
		Content:   string(body),
		FetchedAt: time.Now().UTC(),
		Status:    types.FetchOK,
	}, nil
}
