// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gather fetches raw documents for a batch of candidate sources.
// A bounded worker pool runs fetch tasks in parallel under a global
// concurrency ceiling; each connector type additionally has its own token
// bucket. Transient failures are retried with exponential backoff up to the
// connector's retry ceiling, then recorded as unavailable without aborting
// the round. Tasks return values; nothing here mutates session state.
package gather

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/meshintel/evidence-engine/internal/connector"
	"github.com/meshintel/evidence-engine/pkg/types"
)

// FetchRetryBaseDelay controls the base duration for backoff between fetch
// attempts. Tests override this to avoid real sleeps.
var FetchRetryBaseDelay = 500 * time.Millisecond

// Output holds the results of one gathering round.
type Output struct {
	Documents []types.RawDocument
	Failures  []types.FetchFailure
}

// FailureRatio returns the fraction of sources that failed this round.
func (o Output) FailureRatio() float64 {
	total := len(o.Documents) + len(o.Failures)
	if total == 0 {
		return 0
	}
	return float64(len(o.Failures)) / float64(total)
}

// Pool executes fetch tasks for registered connectors.
type Pool struct {
	connectors map[string]connector.Connector
	cfgs       map[string]types.ConnectorConfig
	limiter    *Limiter
	sem        *semaphore.Weighted
	log        *zap.Logger
}

// NewPool builds a gatherer pool for the given connectors. The semaphore
// enforces the global concurrency cap independently of per-connector rate
// limits.
func NewPool(connectors []connector.Connector, cfg types.PipelineConfig, log *zap.Logger) *Pool {
	byName := make(map[string]connector.Connector, len(connectors))
	names := make([]string, 0, len(connectors))
	for _, c := range connectors {
		byName[c.Name()] = c
		names = append(names, c.Name())
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		connectors: byName,
		cfgs:       cfg.Connectors,
		limiter:    NewLimiter(cfg.Connectors, names),
		sem:        semaphore.NewWeighted(int64(cfg.GlobalConcurrencyCap)),
		log:        log,
	}
}

// Gather fetches every source in parallel and blocks until all tasks have
// completed or hit their own timeout. Output ordering is by source ID, so
// results are reproducible regardless of completion order.
func (p *Pool) Gather(ctx context.Context, sources []types.CandidateSource) Output {
	type taskResult struct {
		doc     types.RawDocument
		failure *types.FetchFailure
	}

	ch := make(chan taskResult, len(sources))
	var wg sync.WaitGroup

	for _, src := range sources {
		wg.Add(1)
		go func(src types.CandidateSource) {
			defer wg.Done()
			doc, failure := p.fetchWithRetry(ctx, src)
			if failure != nil {
				ch <- taskResult{failure: failure}
				return
			}
			ch <- taskResult{doc: doc}
		}(src)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var out Output
	for r := range ch {
		if r.failure != nil {
			out.Failures = append(out.Failures, *r.failure)
			continue
		}
		out.Documents = append(out.Documents, r.doc)
	}

	sort.Slice(out.Documents, func(i, j int) bool {
		return out.Documents[i].SourceID < out.Documents[j].SourceID
	})
	sort.Slice(out.Failures, func(i, j int) bool {
		return out.Failures[i].SourceID < out.Failures[j].SourceID
	})

	p.log.Info("gather round complete",
		zap.Int("documents", len(out.Documents)),
		zap.Int("failures", len(out.Failures)))

	return out
}

// fetchWithRetry runs one fetch task: rate-limit wait, per-attempt timeout,
// and exponential backoff on transient errors up to the connector's retry
// ceiling. Permanent errors fail immediately. The global semaphore slot is
// taken only after the rate-limit token, so a task queued behind a throttled
// connector never holds a slot another connector's fetch could use.
func (p *Pool) fetchWithRetry(ctx context.Context, src types.CandidateSource) (types.RawDocument, *types.FetchFailure) {
	conn, ok := p.connectors[src.Connector]
	if !ok {
		return types.RawDocument{}, &types.FetchFailure{
			SourceID:  src.ID,
			Connector: src.Connector,
			Reason:    "no connector registered for type " + src.Connector,
			Permanent: true,
		}
	}

	cfg := p.cfgs[src.Connector]
	maxRetries := cfg.MaxRetries
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= maxRetries; attempt++ {
		// A token per attempt: retries count against the allowance too.
		if err := p.limiter.Wait(ctx, src.Connector); err != nil {
			return types.RawDocument{}, &types.FetchFailure{
				SourceID:  src.ID,
				Connector: src.Connector,
				Attempts:  attempts,
				Reason:    "rate limit wait: " + err.Error(),
			}
		}

		if err := p.sem.Acquire(ctx, 1); err != nil {
			return types.RawDocument{}, &types.FetchFailure{
				SourceID:  src.ID,
				Connector: src.Connector,
				Attempts:  attempts,
				Reason:    "cancelled awaiting fetch slot: " + err.Error(),
			}
		}

		attempts++
		taskCtx, cancel := context.WithTimeout(ctx, timeout)
		doc, err := conn.Fetch(taskCtx, src)
		cancel()
		p.sem.Release(1)

		if err == nil {
			return doc, nil
		}
		lastErr = err

		var fe *types.FetchError
		if errors.As(err, &fe) && !fe.Transient {
			p.log.Warn("permanent fetch failure",
				zap.String("source", src.ID), zap.Error(err))
			return types.RawDocument{}, &types.FetchFailure{
				SourceID:  src.ID,
				Connector: src.Connector,
				Attempts:  attempts,
				Reason:    err.Error(),
				Permanent: true,
			}
		}

		if attempt == maxRetries {
			break
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * FetchRetryBaseDelay
		p.log.Debug("transient fetch failure, backing off",
			zap.String("source", src.ID),
			zap.Duration("backoff", backoff),
			zap.Int("attempt", attempts),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return types.RawDocument{}, &types.FetchFailure{
				SourceID:  src.ID,
				Connector: src.Connector,
				Attempts:  attempts,
				Reason:    "cancelled during backoff: " + ctx.Err().Error(),
			}
		case <-time.After(backoff):
		}
	}

	p.log.Warn("source unavailable after retries",
		zap.String("source", src.ID),
		zap.Int("attempts", attempts),
		zap.Error(lastErr))

	return types.RawDocument{}, &types.FetchFailure{
		SourceID:  src.ID,
		Connector: src.Connector,
		Attempts:  attempts,
		Reason:    types.ErrSourceUnavailable.Error() + ": " + lastErr.Error(),
	}
}
