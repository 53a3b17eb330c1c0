// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshintel/evidence-engine/internal/intent"
	"github.com/meshintel/evidence-engine/internal/orchestrate"
	"github.com/meshintel/evidence-engine/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run [intent-file]",
	Short: "Run a research session from an intent file",
	Long: `Run loads a YAML intent file (topic, keywords, required categories,
recency window), validates the configuration, and drives the full pipeline:
discovery, gathering, sanitizing, extraction, validation, compilation,
framework scoring, and meta-audit, looping on gathering until the audit is
satisfied or --max-rounds is reached. The session and its report are
persisted; interrupting with Ctrl-C records the session as cancelled.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetInt("max-rounds"); v > 0 {
		cfg.MaxRounds = v
	}
	if v, _ := cmd.Flags().GetBool("allow-gap-override"); v {
		cfg.Report.AllowGapOverride = true
	}

	raw, err := intent.LoadFile(args[0])
	if err != nil {
		return err
	}
	researchIntent, err := intent.Normalize(raw, cfg)
	if err != nil {
		return err
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	sessions, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer sessions.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o := orchestrate.New(cfg, buildConnectors(cfg), sessions, log, os.Stdout)
	if ids, _ := cmd.Flags().GetStringSlice("accept-stale"); len(ids) > 0 {
		o.StaleOverrides = make(map[string]bool, len(ids))
		for _, id := range ids {
			o.StaleOverrides[id] = true
		}
	}

	start := time.Now()
	session, err := o.Run(ctx, researchIntent)
	if session != nil {
		fmt.Fprintf(os.Stdout, "session %s: %s after %d round(s) in %s\n",
			session.ID, session.Status, session.Round, time.Since(start).Round(time.Second))
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "findings: %d, gaps: %d, caveats: %d\n",
		len(session.Findings), len(session.Gaps.Missing), len(session.Report.Caveats))
	if len(session.Report.Caveats) > 0 {
		fmt.Fprintf(os.Stdout, "caveats:\n  %s\n", strings.Join(session.Report.Caveats, "\n  "))
	}
	return nil
}

func init() {
	runCmd.Flags().Int("max-rounds", 0, "override the configured gathering round limit")
	runCmd.Flags().Bool("allow-gap-override", false, "emit a report even when the gap threshold is exceeded")
	runCmd.Flags().StringSlice("accept-stale", nil, "evidence IDs to accept despite failing the recency check")

	rootCmd.AddCommand(runCmd)
}
