// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns an OCI into citation data by asking the configured
// services, in order, until one of them answers.
package resolve

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/oci-engine/internal/accesspath"
	"github.com/pdiddy/oci-engine/internal/codec"
	"github.com/pdiddy/oci-engine/internal/diag"
	"github.com/pdiddy/oci-engine/internal/httputil"
	"github.com/pdiddy/oci-engine/internal/sparql"
	"github.com/pdiddy/oci-engine/pkg/types"
)

// ErrNoServices is returned when resolution is attempted without a loaded
// descriptor list.
var ErrNoServices = eris.New("no service configuration loaded")

const (
	placeholderCiting = "[[CITING]]"
	placeholderCited  = "[[CITED]]"
)

// prefixPattern captures the supplier prefix and the local numeral.
var prefixPattern = regexp.MustCompile(`^(0[1-9]+0)(.+)$`)

// splitPrefix returns the supplier prefix and the rest of an OCI half.
func splitPrefix(half string) (prefix, local string, ok bool) {
	m := prefixPattern.FindStringSubmatch(half)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Fetcher is the HTTP collaborator.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, header http.Header) (*httputil.Response, error)
}

// Result is what one service returned for a citation.
type Result struct {
	CitingURL    string
	CitedURL     string
	CitingDate   string
	CitedDate    string
	Creation     string
	Timespan     string
	Source       string
	ServiceName  string
	IDType       string
	IDShape      string
	CitationType string
}

// Engine holds the read-only state shared by every lookup: descriptors,
// lookup table, interpreter and transport. It is safe for concurrent use.
type Engine struct {
	services []types.ServiceDescriptor
	table    *codec.Table
	interp   *accesspath.Interpreter
	fetch    Fetcher
	sparql   *sparql.Client
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the provenance timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds an Engine. A nil services slice means no configuration
// was loaded: validation fails and resolution returns ErrNoServices.
func NewEngine(services []types.ServiceDescriptor, table *codec.Table, fetch Fetcher, opts ...Option) *Engine {
	var decoder accesspath.Decoder
	if table != nil {
		decoder = table
	}
	e := &Engine{
		services: services,
		table:    table,
		interp:   accesspath.New(accesspath.NewRegistry(decoder, fetch)),
		fetch:    fetch,
		sparql:   sparql.New(fetch),
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Services returns the descriptor list.
func (e *Engine) Services() []types.ServiceDescriptor {
	return e.services
}

// Table returns the lookup table, which may be nil.
func (e *Engine) Table() *codec.Table {
	return e.table
}

// Resolve asks each eligible service in order for the citation between the
// two OCI halves and returns the first answer. It returns (nil, nil) when
// no service answers. Service failures are logged and skipped.
func (e *Engine) Resolve(ctx context.Context, citing, cited string, log *diag.Log) (*Result, error) {
	const op = "resolve"
	if e.services == nil {
		log.Error(op, "No citations can be retrieved since no service configuration has been loaded.")
		return nil, ErrNoServices
	}

	citingPrefix, citingLocal, ok1 := splitPrefix(citing)
	citedPrefix, citedLocal, ok2 := splitPrefix(cited)
	if !ok1 || !ok2 {
		return nil, nil
	}

	for _, d := range e.services {
		if !d.Usable() || !d.Covers(citingPrefix, citedPrefix) {
			continue
		}

		c, err := e.preprocess(ctx, d, citingLocal)
		if err != nil {
			log.Warn(op, "Service '%s' skipped: %v", d.Name, err)
			continue
		}
		t, err := e.preprocess(ctx, d, citedLocal)
		if err != nil {
			log.Warn(op, "Service '%s' skipped: %v", d.Name, err)
			continue
		}

		var res *Result
		if d.IsSPARQL() {
			res, err = e.viaSPARQL(ctx, d, c, t)
		} else {
			res, err = e.viaREST(ctx, d, c, t)
		}
		if err != nil {
			log.Warn(op, "Service '%s' could not be queried: %v", d.Name, err)
			continue
		}
		if res != nil {
			res.ServiceName = d.Name
			res.IDType = d.IDType
			res.IDShape = d.IDShape
			res.CitationType = d.CitationType
			return res, nil
		}
	}
	return nil, nil
}

func (e *Engine) preprocess(ctx context.Context, d types.ServiceDescriptor, s string) (string, error) {
	for _, name := range d.Preprocess {
		out, err := e.interp.Registry().ApplyString(ctx, name, s)
		if err != nil {
			return "", err
		}
		s = out
	}
	return s, nil
}

func (e *Engine) viaREST(ctx context.Context, d types.ServiceDescriptor, citing, cited string) (*Result, error) {
	u := strings.NewReplacer(
		placeholderCiting, httputil.Quote(citing),
		placeholderCited, httputil.Quote(cited),
	).Replace(d.API)

	resp, err := e.fetch.Get(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, nil
	}
	data, err := accesspath.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	b := accesspath.Bindings{Citing: citing, Cited: cited}
	p := d.Query.Paths
	get := func(paths []string) string {
		s, _ := e.interp.FirstString(ctx, data, paths, b)
		return s
	}
	res := &Result{
		CitingURL:  get(p.Citing),
		CitedURL:   get(p.Cited),
		CitingDate: get(p.CitingDate),
		CitedDate:  get(p.CitedDate),
		Creation:   get(p.Creation),
		Timespan:   get(p.Timespan),
		Source:     u,
	}
	if res.CitingURL == "" && res.CitedURL == "" && res.CitingDate == "" &&
		res.CitedDate == "" && res.Creation == "" && res.Timespan == "" {
		return nil, nil
	}
	return res, nil
}

func (e *Engine) viaSPARQL(ctx context.Context, d types.ServiceDescriptor, citing, cited string) (*Result, error) {
	q := strings.ReplaceAll(d.Query.SPARQL, placeholderCiting, citing)
	q = strings.ReplaceAll(q, placeholderCited, cited)

	rows, err := e.sparql.Select(ctx, d.Endpoint, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	citingURL, ok1 := row.Get("citing")
	citedURL, ok2 := row.Get("cited")
	if !ok1 || !ok2 {
		return nil, nil
	}
	res := &Result{CitingURL: citingURL, CitedURL: citedURL, Source: sparql.SourceURL(d.Endpoint, q)}
	res.CitingDate, _ = row.Get("citing_date")
	res.CitedDate, _ = row.Get("cited_date")
	res.Creation, _ = row.Get("creation")
	res.Timespan, _ = row.Get("timespan")
	return res, nil
}
