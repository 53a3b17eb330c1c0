// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var connectorsCmd = &cobra.Command{
	Use:   "connectors",
	Short: "List configured connectors and their rate limits",
	RunE:  runConnectors,
}

func runConnectors(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cfg.Connectors))
	for name := range cfg.Connectors {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONNECTOR\tCAPACITY\tREFILL/S\tRETRIES\tKEY")
	for _, name := range names {
		cc := cfg.Connectors[name]
		key := "-"
		if cc.APIKey != "" {
			key = "set"
		}
		fmt.Fprintf(tw, "%s\t%d\t%g\t%d\t%s\n", name, cc.Capacity, cc.RefillRate, cc.MaxRetries, key)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(connectorsCmd)
}
