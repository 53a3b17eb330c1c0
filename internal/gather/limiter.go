// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gather

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/meshintel/evidence-engine/pkg/types"
)

// Limiter holds one token bucket per connector type. Buckets are scoped to
// the session that created them, and rate.Limiter serializes token updates,
// so concurrent fetch tasks cannot lose updates. A fetch task blocks in
// Wait until a token is available; the allowance is never exceeded even
// under burst submission.
type Limiter struct {
	buckets map[string]*rate.Limiter
}

// defaultBucket is the conservative fallback applied to connectors that
// appear without a rate-limit entry in the configuration.
func defaultBucket() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(1), 1)
}

// NewLimiter builds the per-connector token buckets from configuration:
// capacity is the burst size and refill_rate the tokens per second. Every
// name in connectorNames gets a bucket, falling back to the conservative
// default when the configuration has no entry for it. The bucket map is
// read-only after construction.
func NewLimiter(cfgs map[string]types.ConnectorConfig, connectorNames []string) *Limiter {
	buckets := make(map[string]*rate.Limiter, len(connectorNames))
	for _, name := range connectorNames {
		if cfg, ok := cfgs[name]; ok {
			buckets[name] = rate.NewLimiter(rate.Limit(cfg.RefillRate), cfg.Capacity)
		} else {
			buckets[name] = defaultBucket()
		}
	}
	return &Limiter{buckets: buckets}
}

// Wait blocks until the connector's bucket grants a token or the context
// is cancelled. Requests queue rather than being dropped.
func (l *Limiter) Wait(ctx context.Context, connectorName string) error {
	bucket, ok := l.buckets[connectorName]
	if !ok {
		// Sources from unregistered connectors are rejected upstream;
		// failing closed here keeps the allowance authoritative.
		return fmt.Errorf("no rate limiter for connector %q", connectorName)
	}
	return bucket.Wait(ctx)
}

// Allow reports whether a token is immediately available without consuming
// wait time. Used by tests to observe bucket state.
func (l *Limiter) Allow(connectorName string) bool {
	bucket, ok := l.buckets[connectorName]
	if !ok {
		return false
	}
	return bucket.Allow()
}
