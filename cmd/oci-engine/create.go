// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/oci-engine/internal/batch"
	"github.com/pdiddy/oci-engine/internal/codec"
	"github.com/pdiddy/oci-engine/internal/httputil"
	"github.com/pdiddy/oci-engine/internal/index"
	"github.com/pdiddy/oci-engine/internal/secrets"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create citation records from CSV dumps of DOI-to-DOI citations",
	Long: `Create reads CSV files with the columns citing_id, cited_id,
citing_publication_date and cited_publication_date. Each file needs a JSON
sidecar with the same name holding "agent" and "source".

For every row it mints an OCI, skips citations already in the index, checks
that both DOIs exist, fills in missing publication dates from Crossref and
DataCite, flags journal and author self-citations, and appends the result to
the CSV and N-Triples files under --data (provenance goes to ../prov).

Input paths may be files or directories; directories are walked recursively.`,
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	inputs, _ := cmd.Flags().GetStringSlice("input")
	inputs = append(inputs, args...)
	if len(inputs) == 0 {
		return fmt.Errorf("no input given: use --input or pass paths as arguments")
	}

	bcfg := cfg.Batch
	if dir, _ := cmd.Flags().GetString("data"); dir != "" {
		bcfg.DataDir = dir
	}
	if prefix, _ := cmd.Flags().GetString("prefix"); prefix != "" {
		bcfg.Prefix = prefix
	}
	orcidFlag, _ := cmd.Flags().GetString("orcid")
	orcidKey := secrets.Lookup(loadedSecrets, secrets.ORCIDKey, orcidFlag)
	if orcidKey == "" {
		orcidKey = bcfg.ORCIDKey
	}

	table, err := codec.LoadTable(cfg.Resolver.LookupPath)
	if err != nil {
		return err
	}
	store, err := index.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	hcfg := cfg.HTTP
	hcfg.UserAgent = batch.UserAgent
	deps := batch.NewDeps(table, store, httputil.New(hcfg), orcidKey)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := batch.New(bcfg, deps).Run(ctx, inputs, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Exceptions() > 0 {
		return fmt.Errorf("%d citation(s) not processed due to an exception", summary.Exceptions())
	}
	return nil
}

func init() {
	createCmd.Flags().StringSliceP("input", "i", nil, "input CSV file or directory (repeatable)")
	createCmd.Flags().StringP("data", "d", "", "output data directory (default: batch.data_dir)")
	createCmd.Flags().String("prefix", "", "supplier prefix for new OCIs (default: batch.prefix)")
	createCmd.Flags().StringP("orcid", "o", "", "ORCID API key (default: .secrets/orcid-api-key or ORCID_API_KEY)")

	rootCmd.AddCommand(createCmd)
}
