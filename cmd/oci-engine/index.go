// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/oci-engine/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the local index of minted citations (seed, list, export, count)",
	Long: `Index manages the SQLite database that records every OCI created by
"create". The batch pipeline consults it to skip citations already present.`,
}

// --- seed subcommand ---

var indexSeedCmd = &cobra.Command{
	Use:   "seed DIR",
	Short: "Index the citations found in existing CSV output",
	Long: `Seed walks DIR for CSV files with an "oci" column, such as the data
files written by earlier runs, and adds every citation not yet indexed.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexSeed,
}

func runIndexSeed(cmd *cobra.Command, args []string) error {
	store, err := index.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.SeedFromCSV(context.Background(), args[0], os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("\n%d file(s), %d added, %d already indexed\n", summary.Files, summary.Added, summary.Skipped)
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed seeding", summary.Failed)
	}
	return nil
}

// --- list subcommand ---

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed citations",
	Long: `List prints indexed citations ordered by OCI, optionally filtered by
citing or cited DOI or by the batch run that created them.`,
	RunE: runIndexList,
}

func runIndexList(cmd *cobra.Command, args []string) error {
	store, err := index.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background(), queryOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No citations found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-40s  %-30s  %-30s  %-10s  %s\n",
		"OCI", "Citing", "Cited", "Created", "Run")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 130))
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%-40s  %-30s  %-30s  %-10s  %s\n",
			clip(e.OCI, 40), clip(e.Citing, 30), clip(e.Cited, 30), e.Creation, e.RunID)
	}
	fmt.Fprintf(os.Stdout, "\n%d citations\n", len(entries))
	return nil
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export indexed citations to YAML, JSON or CSV",
	Long: `Export writes every indexed citation (or the subset matching the
filter flags) to stdout or to --output.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := index.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	w := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := store.Export(context.Background(), w, format, queryOptsFromFlags(cmd)); err != nil {
		return err
	}
	if output != "" {
		fmt.Printf("Exported to %s\n", output)
	}
	return nil
}

// --- count subcommand ---

var indexCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of indexed citations",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := index.Open(cfg.Index)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Count(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command) index.QueryOptions {
	citing, _ := cmd.Flags().GetString("citing")
	cited, _ := cmd.Flags().GetString("cited")
	runID, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")
	return index.QueryOptions{Citing: citing, Cited: cited, RunID: runID, Limit: limit}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("citing", "", "filter by citing DOI")
	cmd.Flags().String("cited", "", "filter by cited DOI")
	cmd.Flags().String("run", "", "filter by batch run ID")
}

func init() {
	addFilterFlags(indexListCmd)
	indexListCmd.Flags().Int("limit", 0, "maximum results (default 20, negative for all)")
	indexListCmd.Flags().Bool("json", false, "output results as JSON")

	addFilterFlags(indexExportCmd)
	indexExportCmd.Flags().StringP("format", "f", index.ExportYAML, "export format: yaml, json or csv")
	indexExportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")

	indexCmd.AddCommand(indexSeedCmd)
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexExportCmd)
	indexCmd.AddCommand(indexCountCmd)
	rootCmd.AddCommand(indexCmd)
}
