// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the evidence-engine CLI. The pipeline
// stages are internal; the CLI surface is run, session, connectors, and
// version.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/meshintel/evidence-engine/internal/connector"
	"github.com/meshintel/evidence-engine/internal/secrets"
	"github.com/meshintel/evidence-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the evidence-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "evidence-engine",
	Short: "Citation-backed research evidence pipeline",
	Long: `evidence-engine runs structured research sessions: it discovers candidate
sources through pluggable connectors, gathers them under per-connector rate
limits, sanitizes and extracts evidence, validates every claim against
citation, recency, and quality checks, and compiles findings into a
citation-backed report with an explicit gap analysis.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./evidence-engine.yaml or ~/.config/evidence-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("evidence-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "evidence-engine"))
		}
	}

	viper.SetEnvPrefix("EVIDENCE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig merges defaults, the config file, and loaded secrets.
func pipelineConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}
	if len(cfg.Connectors) == 0 {
		cfg.Connectors = defaultConnectorConfigs()
	}
	secrets.Apply(&cfg, loadedSecrets)
	return cfg, cfg.Validate()
}

// defaultConnectorConfigs is the built-in connector set used when no config
// file declares any. Scholarly sources answer slowly, hence the longer
// timeout and lower refill rate.
func defaultConnectorConfigs() map[string]types.ConnectorConfig {
	return map[string]types.ConnectorConfig{
		"web":       {Capacity: 5, RefillRate: 1, Timeout: 30 * time.Second, MaxRetries: 3},
		"scholarly": {Capacity: 3, RefillRate: 0.5, Timeout: 60 * time.Second, MaxRetries: 3},
		"newsfeed":  {Capacity: 5, RefillRate: 2, Timeout: 15 * time.Second, MaxRetries: 3},
	}
}

// buildConnectors instantiates every configured connector type.
func buildConnectors(cfg types.PipelineConfig) []connector.Connector {
	var out []connector.Connector
	for name, cc := range cfg.Connectors {
		switch name {
		case "web":
			out = append(out, connector.NewWebConnector(cc))
		case "scholarly":
			out = append(out, connector.NewScholarlyConnector(cc))
		case "newsfeed":
			out = append(out, connector.NewNewsfeedConnector(cc))
		default:
			fmt.Fprintf(os.Stderr, "warning: unknown connector type %q ignored\n", name)
		}
	}
	return out
}

// newLogger builds the session logger; --verbose switches to development
// output with debug level.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
