// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch turns CSV files of DOI-to-DOI citations into corpus
// records: it mints OCIs, checks the DOIs, fills in dates and self-citation
// flags, writes CSV and RDF output and records every new OCI in the index.
package batch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/oci-engine/internal/citation"
	"github.com/pdiddy/oci-engine/internal/codec"
	"github.com/pdiddy/oci-engine/internal/enrich"
	"github.com/pdiddy/oci-engine/internal/httputil"
	"github.com/pdiddy/oci-engine/internal/index"
	"github.com/pdiddy/oci-engine/pkg/types"
)

// UserAgent identifies batch runs to the metadata services.
const UserAgent = "CROCI / Create New Citations (via OpenCitations - http://opencitations.net; mailto:contact@opencitations.net)"

// Defaults applied to empty BatchConfig fields.
const (
	DefaultPrefix      = "050"
	DefaultBaseURL     = "http://dx.doi.org/"
	DefaultCorpusBase  = "https://w3id.org/oc/index/croci/"
	DefaultServiceName = "CROCI"
)

const stampLayout = "2006-01-02T15:04:05"

// Index is the set of citations already in the corpus.
type Index interface {
	Has(ctx context.Context, oci string) (bool, error)
	Add(ctx context.Context, e index.Entry) (bool, error)
}

// ExistenceChecker confirms that a DOI is registered.
type ExistenceChecker interface {
	Exists(ctx context.Context, doi string) (bool, error)
}

// Journals reports whether two works share a journal and knows
// publication dates.
type Journals interface {
	enrich.Dater
	ShareISSN(ctx context.Context, a, b string) (bool, error)
}

// Authors reports whether two works share an author.
type Authors interface {
	ShareORCID(ctx context.Context, a, b string) (bool, error)
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Table    *codec.Table
	Index    Index
	DOIs     ExistenceChecker
	Crossref Journals
	DataCite enrich.Dater
	ORCID    Authors
}

// NewDeps wires the enrichment clients to one HTTP collaborator. Crossref
// ORCIDs are merged into the ORCID search results.
func NewDeps(table *codec.Table, idx Index, fetch enrich.Fetcher, orcidKey string) Deps {
	cr := enrich.NewCrossref(fetch)
	return Deps{
		Table:    table,
		Index:    idx,
		DOIs:     enrich.NewDOIChecker(fetch),
		Crossref: cr,
		DataCite: enrich.NewDataCite(fetch),
		ORCID:    enrich.NewORCID(fetch, orcidKey, cr),
	}
}

// Summary holds the counts of a run.
type Summary struct {
	RunID           string
	Total           int
	Added           int
	Present         int
	SyntaxErrors    int
	ExistenceErrors int
}

// Exceptions returns the number of rows that failed for any other reason.
func (s Summary) Exceptions() int {
	return s.Total - (s.Added + s.Present + s.SyntaxErrors + s.ExistenceErrors)
}

// Print writes the end-of-run report.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "\n# Summary (run %s)\n", s.RunID)
	fmt.Fprintf(w, "Number of new citations added: %d\n", s.Added)
	fmt.Fprintf(w, "Number of citations already present: %d\n", s.Present)
	fmt.Fprintf(w, "Number of citations not added due to a wrong DOI specification: %d (syntax error) and %d (not found error)\n",
		s.SyntaxErrors, s.ExistenceErrors)
	fmt.Fprintf(w, "Number of citations not processed due to an exception: %d\n", s.Exceptions())
}

// Pipeline runs batches. Create one per run; it is not safe for concurrent
// use.
type Pipeline struct {
	cfg  types.BatchConfig
	deps Deps
	out  Output
	now  func() time.Time
	seen map[string]bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the provenance timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New builds a Pipeline. Empty config fields take the package defaults.
func New(cfg types.BatchConfig, deps Deps, opts ...Option) *Pipeline {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.CorpusBase == "" {
		cfg.CorpusBase = DefaultCorpusBase
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}
	p := &Pipeline{
		cfg:  cfg,
		deps: deps,
		out:  Output{DataDir: cfg.DataDir, CorpusBase: cfg.CorpusBase},
		now:  time.Now,
		seen: make(map[string]bool),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

type outcome int

const (
	outcomeAdded outcome = iota
	outcomePresent
	outcomeSyntax
	outcomeExistence
)

// Run processes every input path in order and reports progress to w. A
// file that cannot be read is reported and skipped; a row that fails is
// counted as an exception.
func (p *Pipeline) Run(ctx context.Context, paths []string, w io.Writer) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	stamp := p.now().Format(stampLayout)
	log := zap.L().With(zap.String("run_id", summary.RunID))

	for _, path := range paths {
		fmt.Fprintf(w, "\nProcessing '%s'\n", path)
		inputs, err := ReadInputs(path)
		if err != nil {
			fmt.Fprintf(w, "failed: %v\n", err)
			log.Warn("batch input skipped", zap.String("path", path), zap.Error(err))
			continue
		}

		for _, in := range inputs {
			summary.Total += len(in.Rows)
			for _, row := range in.Rows {
				if err := ctx.Err(); err != nil {
					return summary, err
				}
				out, err := p.process(ctx, row, in.Meta, stamp, summary.RunID, w)
				if err != nil {
					fmt.Fprintf(w, "ERROR: %v\n", err)
					log.Error("batch row failed", zap.String("path", in.Path), zap.Error(err))
					continue
				}
				switch out {
				case outcomeAdded:
					summary.Added++
				case outcomePresent:
					summary.Present++
				case outcomeSyntax:
					summary.SyntaxErrors++
				case outcomeExistence:
					summary.ExistenceErrors++
				}
			}
		}
	}

	summary.Print(w)
	return summary, nil
}

func (p *Pipeline) process(ctx context.Context, row Row, meta Meta, stamp, runID string, w io.Writer) (outcome, error) {
	citing, ok1 := enrich.NormalizeDOI(row.CitingID)
	cited, ok2 := enrich.NormalizeDOI(row.CitedID)
	if !ok1 || !ok2 {
		fmt.Fprintf(w, "WARNING: some DOIs, among '%s' and '%s', are syntactically incorrect\n", row.CitingID, row.CitedID)
		return outcomeSyntax, nil
	}

	oci, err := p.deps.Table.OCI(citing, cited, p.cfg.Prefix)
	if err != nil {
		fmt.Fprintf(w, "WARNING: some DOIs, among '%s' and '%s', cannot be encoded: %v\n", citing, cited, err)
		return outcomeSyntax, nil
	}

	present := p.seen[oci]
	if !present {
		present, err = p.deps.Index.Has(ctx, oci)
		if err != nil {
			return 0, err
		}
	}
	if present {
		fmt.Fprintf(w, "WARNING: the citation between DOI '%s' and DOI '%s' has been already processed\n", citing, cited)
		return outcomePresent, nil
	}
	p.seen[oci] = true

	exists, err := p.bothExist(ctx, citing, cited)
	if err != nil {
		return 0, err
	}
	if !exists {
		fmt.Fprintf(w, "WARNING: some DOIs, among '%s' and '%s', do not exist\n", citing, cited)
		return outcomeExistence, nil
	}

	fmt.Fprintf(w, "Create citation data for '%s' between DOI '%s' and DOI '%s', from '%s'\n",
		oci, citing, cited, meta.Source)

	journalSC, err := p.deps.Crossref.ShareISSN(ctx, citing, cited)
	if err != nil {
		return 0, err
	}
	authorSC, err := p.deps.ORCID.ShareORCID(ctx, citing, cited)
	if err != nil {
		return 0, err
	}

	c := citation.New(citation.Params{
		OCI:           oci,
		CitingURL:     p.cfg.BaseURL + httputil.Quote(citing),
		CitingPubDate: enrich.PublicationDate(ctx, citing, row.CitingDate, p.deps.Crossref, p.deps.DataCite),
		CitedURL:      p.cfg.BaseURL + httputil.Quote(cited),
		CitedPubDate:  enrich.PublicationDate(ctx, cited, row.CitedDate, p.deps.Crossref, p.deps.DataCite),
		ProvAgentURL:  meta.Agent,
		Source:        meta.Source,
		ProvDate:      stamp,
		ServiceName:   p.cfg.ServiceName,
		IDType:        "doi",
		IDShape:       p.cfg.BaseURL + "([[XXX__decode]])",
		CitationType:  string(types.CitationReference),
		JournalSC:     journalSC,
		AuthorSC:      authorSC,
	})

	if err := p.out.Store(c, stamp); err != nil {
		return 0, err
	}
	if _, err := p.deps.Index.Add(ctx, index.NewEntry(c, runID)); err != nil {
		return 0, err
	}
	return outcomeAdded, nil
}

// bothExist checks the two DOIs concurrently.
func (p *Pipeline) bothExist(ctx context.Context, citing, cited string) (bool, error) {
	var citingOK, citedOK bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		citingOK, err = p.deps.DOIs.Exists(gctx, citing)
		return err
	})
	g.Go(func() error {
		var err error
		citedOK, err = p.deps.DOIs.Exists(gctx, cited)
		return err
	})
	if err := g.Wait(); err != nil {
		return false, eris.Wrap(err, "checking doi existence")
	}
	return citingOK && citedOK, nil
}
