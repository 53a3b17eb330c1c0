// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover queries every configured connector for candidate sources
// and assigns each a provenance-based trust tier. Connector failures are
// isolated: one failing connector never blocks the others, and partial
// results are returned with a per-connector status.
package discover

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/meshintel/evidence-engine/internal/connector"
	"github.com/meshintel/evidence-engine/pkg/types"
)

// Output holds the sources found in one discovery round plus the
// per-connector statuses.
type Output struct {
	Sources  []types.CandidateSource
	Statuses []types.ConnectorStatus
}

// Discover fans the intent out to all connectors concurrently, assigns
// trust tiers, deduplicates by source ID, and drops sources already known
// to the session (feedback rounds only gather new material). The intent's
// MaxSources cap applies to the session total: known sources consume the
// budget, and when a round overflows it the highest-tier sources are kept.
// The result is sorted by source ID so downstream identity is independent
// of connector completion order.
func Discover(ctx context.Context, connectors []connector.Connector, intent types.ResearchIntent, known map[string]bool, w io.Writer) Output {
	type connectorResult struct {
		name    string
		sources []types.CandidateSource
		err     error
	}

	ch := make(chan connectorResult, len(connectors))
	var wg sync.WaitGroup

	for _, c := range connectors {
		wg.Add(1)
		go func(c connector.Connector) {
			defer wg.Done()
			sources, err := c.Search(ctx, intent)
			ch <- connectorResult{name: c.Name(), sources: sources, err: err}
		}(c)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var out Output
	seen := make(map[string]bool)

	for cr := range ch {
		status := types.ConnectorStatus{Connector: cr.name}
		if cr.err != nil {
			status.Err = cr.err.Error()
			fmt.Fprintf(w, "warning: connector %s discovery failed: %v\n", cr.name, cr.err)
			out.Statuses = append(out.Statuses, status)
			continue
		}
		for _, src := range cr.sources {
			if seen[src.ID] || known[src.ID] {
				continue
			}
			seen[src.ID] = true
			src.Tier = AssignTier(src)
			out.Sources = append(out.Sources, src)
			status.Found++
		}
		out.Statuses = append(out.Statuses, status)
	}

	sort.Slice(out.Sources, func(i, j int) bool {
		return out.Sources[i].ID < out.Sources[j].ID
	})
	sort.Slice(out.Statuses, func(i, j int) bool {
		return out.Statuses[i].Connector < out.Statuses[j].Connector
	})

	// MaxSources bounds the session total, so sources from earlier rounds
	// count against the budget. When the cap bites, the most trusted
	// sources survive; ties break on ID so the cut is reproducible.
	if intent.MaxSources > 0 {
		budget := intent.MaxSources - len(known)
		if budget < 0 {
			budget = 0
		}
		if len(out.Sources) > budget {
			sort.Slice(out.Sources, func(i, j int) bool {
				wi, wj := out.Sources[i].Tier.Weight(), out.Sources[j].Tier.Weight()
				if wi != wj {
					return wi > wj
				}
				return out.Sources[i].ID < out.Sources[j].ID
			})
			out.Sources = out.Sources[:budget]
			sort.Slice(out.Sources, func(i, j int) bool {
				return out.Sources[i].ID < out.Sources[j].ID
			})
		}
	}

	return out
}
