// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meshintel/evidence-engine/internal/report"
	"github.com/meshintel/evidence-engine/internal/store"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect stored research sessions",
	Long: `Session lists stored sessions, shows the full state of one session,
re-renders its report, or searches evidence claims across all sessions using
full-text search. Rejected evidence stays inspectable with its rejection
reason.`,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions, most recent first",
	RunE:  runSessionList,
}

func runSessionList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	sessions, err := s.List(context.Background())
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stdout, "no sessions stored")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTOPIC\tSTATUS\tSTAGE\tROUND\tUPDATED")
	for _, sum := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			sum.ID, sum.Topic, sum.Status, sum.Stage, sum.Round,
			sum.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Print the full state of one session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	session, err := s.Load(context.Background(), args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(session)
}

var sessionReportCmd = &cobra.Command{
	Use:   "report [session-id]",
	Short: "Render a stored session's report as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionReport,
}

func runSessionReport(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	session, err := s.Load(context.Background(), args[0])
	if err != nil {
		return err
	}
	if session.Report == nil {
		return fmt.Errorf("session %s has no report (status %s)", session.ID, session.Status)
	}
	fmt.Fprint(os.Stdout, report.RenderMarkdown(session.Report))
	return nil
}

var sessionSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search evidence claims across stored sessions",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionSearch,
}

func runSessionSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("max-results")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	matches, err := s.SearchEvidence(context.Background(), args[0], limit)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "no matches")
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(os.Stdout, "%s %s [%s] %s\n", m.SessionID, m.EvidenceID, m.Verdict, m.Claim)
		if m.Reason != "" {
			fmt.Fprintf(os.Stdout, "  reason: %s\n", m.Reason)
		}
	}
	return nil
}

func openStore() (*store.Store, error) {
	cfg, err := pipelineConfig()
	if err != nil {
		return nil, err
	}
	return store.NewStore(cfg.Store)
}

func init() {
	sessionSearchCmd.Flags().Int("max-results", 20, "maximum number of matches to return")

	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionReportCmd)
	sessionCmd.AddCommand(sessionSearchCmd)
	rootCmd.AddCommand(sessionCmd)
}
