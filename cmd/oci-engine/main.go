// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the oci-engine CLI: it validates and
// resolves Open Citation Identifiers, converts between DOIs and OCI
// numerals, and turns CSV citation dumps into corpus records.
package main

import (
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/oci-engine/internal/config"
	"github.com/pdiddy/oci-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is loaded once before any subcommand runs.
	cfg *config.Config

	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets map[string]string
)

var rootCmd = &cobra.Command{
	Use:   "oci-engine",
	Short: "Resolve and mint Open Citation Identifiers",
	Long: `oci-engine works with Open Citation Identifiers (OCIs), the compact
"oci:<citing>-<cited>" identifiers used by the OpenCitations indexes.

It validates an OCI, resolves it through the configured services into
citation data (JSON, CSV, Scholix or RDF), converts DOIs to and from OCI
numerals, and creates new citation records from CSV dumps.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; it may carry ORCID_API_KEY.
		_ = godotenv.Load()

		file, _ := cmd.Flags().GetString("config")
		c, err := config.Load(file)
		if err != nil {
			return err
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			c.Log.Level = lvl
		}
		if err := config.InitLogger(c.Log); err != nil {
			return err
		}
		cfg = c

		s, err := secrets.Load(secrets.DefaultDir)
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
			zap.L().Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./oci-engine.yaml or ~/.config/oci-engine/oci-engine.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "override log.level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
