// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrate drives a research session through the pipeline:
// discovery, gathering, sanitizing, extraction, validation, compilation,
// scoring, audit, report. The orchestrator owns all session state; stage
// packages take values in and hand values back.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meshintel/evidence-engine/internal/audit"
	"github.com/meshintel/evidence-engine/internal/compile"
	"github.com/meshintel/evidence-engine/internal/connector"
	"github.com/meshintel/evidence-engine/internal/discover"
	"github.com/meshintel/evidence-engine/internal/extract"
	"github.com/meshintel/evidence-engine/internal/framework"
	"github.com/meshintel/evidence-engine/internal/gather"
	"github.com/meshintel/evidence-engine/internal/report"
	"github.com/meshintel/evidence-engine/internal/sanitize"
	"github.com/meshintel/evidence-engine/internal/validate"
	"github.com/meshintel/evidence-engine/pkg/types"
)

// SessionStore persists session state at stage boundaries.
type SessionStore interface {
	Save(ctx context.Context, session *types.ResearchSession) error
}

// Orchestrator runs research sessions. Safe for sequential reuse; each Run
// builds fresh session state.
type Orchestrator struct {
	cfg        types.PipelineConfig
	connectors []connector.Connector
	extractor  extract.Extractor
	scorer     *framework.Engine
	store      SessionStore
	log        *zap.Logger
	w          io.Writer

	// StaleOverrides lists evidence IDs the caller accepts despite
	// failing recency. Set before Run.
	StaleOverrides map[string]bool

	// now and newID are test seams.
	now   func() time.Time
	newID func() string
}

// New builds an orchestrator. store may be nil, in which case session state
// lives only in memory for the duration of the run.
func New(cfg types.PipelineConfig, connectors []connector.Connector, store SessionStore, log *zap.Logger, w io.Writer) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	if w == nil {
		w = io.Discard
	}
	return &Orchestrator{
		cfg:        cfg,
		connectors: connectors,
		extractor:  extract.NewRuleBased(),
		scorer:     framework.NewEngine(),
		store:      store,
		log:        log,
		w:          w,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// Run executes one full session. Configuration errors are fatal before any
// stage runs; after that, per-source and per-connector failures degrade the
// session instead of aborting it. The returned session is always non-nil
// once the configuration validates, including on error, so callers can
// inspect how far the run got.
func (o *Orchestrator) Run(ctx context.Context, intent types.ResearchIntent) (*types.ResearchSession, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if intent.RecencyWindow <= 0 {
		intent.RecencyWindow = o.cfg.RecencyWindow
	}

	session := &types.ResearchSession{
		ID:        o.newID(),
		Intent:    intent,
		Stage:     types.StageDiscovery,
		Status:    types.SessionRunning,
		CreatedAt: o.now(),
	}
	o.log.Info("session started",
		zap.String("session", session.ID),
		zap.String("topic", intent.Topic),
		zap.Int("max_rounds", o.cfg.MaxRounds))

	pool := gather.NewPool(o.connectors, o.cfg, o.log)
	degraded := false

	for round := 1; round <= o.cfg.MaxRounds; round++ {
		session.Round = round
		fmt.Fprintf(o.w, "round %d/%d\n", round, o.cfg.MaxRounds)

		roundDegraded, err := o.runRound(ctx, session, pool)
		degraded = degraded || roundDegraded
		if err != nil {
			return session, o.finish(session, err)
		}

		verdict := session.Audits[len(session.Audits)-1]
		if verdict.Disposition != types.AuditNeedsMoreEvidence {
			break
		}
		fmt.Fprintf(o.w, "audit: more evidence needed\n")
	}

	if err := o.checkCancelled(ctx, session); err != nil {
		return session, o.finish(session, err)
	}

	session.Stage = types.StageReport
	rep, err := report.Generate(report.Inputs{
		SessionID: session.ID,
		Intent:    session.Intent,
		Findings:  session.Findings,
		Scores:    session.Scores,
		Gaps:      session.Gaps,
		Audit:     session.Audits[len(session.Audits)-1],
		Rounds:    session.Round,
		MaxRounds: o.cfg.MaxRounds,
		Degraded:  degraded,
		Now:       o.now(),
	}, o.cfg.Report, o.cfg.GapThreshold)
	if err != nil {
		return session, o.finish(session, err)
	}
	session.Report = rep

	if o.cfg.Report.OutputDir != "" {
		path, err := report.Write(rep, o.cfg.Report)
		if err != nil {
			return session, o.finish(session, err)
		}
		fmt.Fprintf(o.w, "report written to %s\n", path)
	}

	session.Stage = types.StageDone
	if degraded {
		session.Status = types.SessionDegraded
	} else {
		session.Status = types.SessionComplete
	}
	session.UpdatedAt = o.now()
	o.save(session)
	o.log.Info("session finished",
		zap.String("session", session.ID),
		zap.String("status", string(session.Status)),
		zap.Int("rounds", session.Round),
		zap.Int("findings", len(session.Findings)))
	return session, nil
}

// runRound executes one gathering round end to end, through the meta-audit.
// It reports whether gathering was degraded this round.
func (o *Orchestrator) runRound(ctx context.Context, session *types.ResearchSession, pool *gather.Pool) (bool, error) {
	if err := o.checkCancelled(ctx, session); err != nil {
		return false, err
	}

	session.Stage = types.StageDiscovery
	known := make(map[string]bool, len(session.Sources))
	for _, src := range session.Sources {
		known[src.ID] = true
	}
	disc := discover.Discover(ctx, o.connectors, session.Intent, known, o.w)
	session.Sources = append(session.Sources, disc.Sources...)
	session.ConnectorStatuses = append(session.ConnectorStatuses, disc.Statuses...)

	if err := o.checkCancelled(ctx, session); err != nil {
		return false, err
	}

	session.Stage = types.StageGathering
	gathered := pool.Gather(ctx, disc.Sources)
	session.Documents = append(session.Documents, gathered.Documents...)
	session.Failures = append(session.Failures, gathered.Failures...)
	degraded := gathered.FailureRatio() > o.cfg.DegradedFailureRatio
	if degraded {
		fmt.Fprintf(o.w, "warning: %d of %d sources failed this round\n",
			len(gathered.Failures), len(gathered.Documents)+len(gathered.Failures))
	}

	if err := o.checkCancelled(ctx, session); err != nil {
		return degraded, err
	}

	session.Stage = types.StageSanitizing
	sanitized := sanitize.SanitizeAll(gathered.Documents)

	session.Stage = types.StageExtraction
	idx := session.SourceIndex()
	evidence := extract.ExtractAll(ctx, o.extractor, sanitized, idx, session.Intent, o.w)
	session.Evidence = appendNewEvidence(session.Evidence, evidence)

	if err := o.checkCancelled(ctx, session); err != nil {
		return degraded, err
	}

	session.Stage = types.StageValidation
	session.Validations = validate.ValidateAll(session.Evidence, validate.Options{
		Sources:        idx,
		RecencyWindow:  session.Intent.RecencyWindow,
		QualityFloor:   o.cfg.QualityFloor,
		Now:            o.now(),
		StaleOverrides: o.StaleOverrides,
	})

	session.Stage = types.StageCompile
	session.Findings, session.Gaps = compile.Compile(
		session.Evidence, session.Validations, session.Intent, o.cfg.MinCategoryFindings)

	session.Stage = types.StageScoring
	acceptedByID := make(map[string]types.Evidence)
	for _, e := range session.AcceptedEvidence() {
		acceptedByID[e.ID] = e
	}
	session.Scores = o.scorer.ScoreAll(framework.Input{
		Intent:   session.Intent,
		Findings: session.Findings,
		Gaps:     session.Gaps,
		Evidence: acceptedByID,
		Now:      o.now(),
	})

	session.Stage = types.StageAudit
	verdict := audit.Review(session.Findings, session.Gaps, session.Round, o.cfg.MaxRounds)
	session.Audits = append(session.Audits, verdict)

	session.UpdatedAt = o.now()
	o.save(session)
	return degraded, nil
}

// appendNewEvidence merges a round's extraction output, keeping the first
// occurrence of each deterministic evidence ID.
func appendNewEvidence(existing, fresh []types.Evidence) []types.Evidence {
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e.ID] = true
	}
	for _, e := range fresh {
		if !seen[e.ID] {
			seen[e.ID] = true
			existing = append(existing, e)
		}
	}
	return existing
}

// checkCancelled marks the session cancelled when the context is done.
func (o *Orchestrator) checkCancelled(ctx context.Context, session *types.ResearchSession) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("session cancelled at stage %s: %w", session.Stage, err)
	}
	return nil
}

// finish records a terminal error state and persists it.
func (o *Orchestrator) finish(session *types.ResearchSession, err error) error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		session.Status = types.SessionCancelled
	default:
		session.Status = types.SessionFailed
	}
	session.UpdatedAt = o.now()
	o.save(session)
	o.log.Warn("session ended early",
		zap.String("session", session.ID),
		zap.String("status", string(session.Status)),
		zap.Error(err))
	return err
}

// save persists session state; persistence failures are logged, never fatal.
func (o *Orchestrator) save(session *types.ResearchSession) {
	if o.store == nil {
		return
	}
	// The run context may already be cancelled; saving still matters.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.store.Save(ctx, session); err != nil {
		o.log.Warn("session save failed", zap.String("session", session.ID), zap.Error(err))
	}
}
