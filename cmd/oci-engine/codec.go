// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/oci-engine/internal/codec"
	"github.com/pdiddy/oci-engine/internal/enrich"
)

var encodeCmd = &cobra.Command{
	Use:   "encode CITING_DOI CITED_DOI",
	Short: "Mint the OCI for a DOI-to-DOI citation",
	Long: `Encode normalizes both DOIs, maps them to numerals through the lookup
table and prints the resulting OCI under the given supplier prefix.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, _ := cmd.Flags().GetString("prefix")
		if prefix == "" {
			prefix = cfg.Batch.Prefix
		}

		table, err := codec.LoadTable(cfg.Resolver.LookupPath)
		if err != nil {
			return err
		}
		citing, ok1 := enrich.NormalizeDOI(args[0])
		cited, ok2 := enrich.NormalizeDOI(args[1])
		if !ok1 || !ok2 {
			return fmt.Errorf("both arguments must be DOIs")
		}
		oci, err := table.OCI(citing, cited, prefix)
		if err != nil {
			return err
		}
		fmt.Println(oci)
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode NUMERAL...",
	Short: "Turn OCI numerals back into DOIs",
	Long: `Decode maps each numeral (without its supplier prefix) back to a DOI
through the lookup table. Unknown codes pass through unchanged.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := codec.LoadTable(cfg.Resolver.LookupPath)
		if err != nil {
			return err
		}
		for _, n := range args {
			fmt.Println(table.Decode(n))
		}
		return nil
	},
}

func init() {
	encodeCmd.Flags().String("prefix", "", "supplier prefix (default: batch.prefix)")

	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
}
