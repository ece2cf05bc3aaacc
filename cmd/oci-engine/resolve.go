// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pdiddy/oci-engine/internal/codec"
	"github.com/pdiddy/oci-engine/internal/httputil"
	"github.com/pdiddy/oci-engine/internal/render"
	"github.com/pdiddy/oci-engine/internal/resolve"
	"github.com/pdiddy/oci-engine/pkg/types"
)

// newEngine loads the lookup table and service descriptors named in the
// config. Both are required.
func newEngine() (*resolve.Engine, error) {
	table, err := codec.LoadTable(cfg.Resolver.LookupPath)
	if err != nil {
		return nil, err
	}
	services, err := resolve.LoadServices(cfg.Resolver.ServicesPath)
	if err != nil {
		return nil, err
	}
	return resolve.NewEngine(services, table, httputil.New(cfg.HTTP)), nil
}

func renderOptions() render.Options {
	return render.Options{
		BaseURL: cfg.Render.BaseURL,
		Agent:   cfg.Render.Agent,
		License: cfg.Render.License,
	}
}

var validateCmd = &cobra.Command{
	Use:   "validate OCI",
	Short: "Check the syntax and supplier prefixes of an OCI",
	Long: `Validate checks that both halves of the OCI match the numeral syntax and
that one configured service is responsible for both supplier prefixes. A
missing "oci:" prefix is added with a warning.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	q := e.Query(args[0])
	valid := q.Validate()
	q.Log().Print(os.Stderr)
	if !valid {
		return eris.Errorf("%s is not a valid OCI", q.OCI())
	}
	fmt.Println(q.OCI())
	return nil
}

var getCmd = &cobra.Command{
	Use:   "get OCI",
	Short: "Resolve an OCI into citation data",
	Long: `Get validates the OCI, asks the configured services in order for the
citation it identifies and prints it in the requested format.

Formats: json (default), csv, scholix, nt, turtle, json-ld. Media types
and aliases such as "text/csv", "ttl" and "nt11" are accepted; unknown
names fall back to json.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	quiet, _ := cmd.Flags().GetBool("quiet")

	e, err := newEngine()
	if err != nil {
		return err
	}
	q := e.Query(args[0])
	out, err := q.Render(context.Background(), format, renderOptions())
	if !quiet {
		q.Log().Print(os.Stderr)
	}
	if err != nil {
		if errors.Is(err, render.ErrUnsupportedFormat) {
			return eris.Wrapf(err, "format %q", format)
		}
		return err
	}
	if out == "" {
		if q.Log().Has(types.SeverityError) {
			return eris.Errorf("%s could not be resolved", q.OCI())
		}
		return nil
	}
	fmt.Println(out)
	return nil
}

func init() {
	getCmd.Flags().StringP("format", "f", "json", "output format")
	getCmd.Flags().BoolP("quiet", "q", false, "do not print diagnostic messages")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(getCmd)
}
