// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sparql runs SELECT queries against a SPARQL protocol endpoint and
// returns the JSON result bindings.
package sparql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/oci-engine/internal/httputil"
)

const resultsMediaType = "application/sparql-results+json"

// Fetcher is the HTTP collaborator used to reach endpoints.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, header http.Header) (*httputil.Response, error)
}

// Term is one bound value in a result row.
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Row maps variable names to their bound terms. Unbound variables are
// absent.
type Row map[string]Term

// Get returns the value bound to name.
func (r Row) Get(name string) (string, bool) {
	t, ok := r[name]
	return t.Value, ok
}

type results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []Row `json:"bindings"`
	} `json:"results"`
}

// Client issues queries through a Fetcher.
type Client struct {
	fetch Fetcher
}

// New returns a Client.
func New(f Fetcher) *Client {
	return &Client{fetch: f}
}

// Select runs query at endpoint and returns every result row.
func (c *Client) Select(ctx context.Context, endpoint, query string) ([]Row, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, eris.Wrapf(err, "sparql: endpoint %s", endpoint)
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	resp, err := c.fetch.Get(ctx, u.String(), http.Header{"Accept": {resultsMediaType}})
	if err != nil {
		return nil, eris.Wrap(err, "sparql: query")
	}
	if !resp.OK() {
		return nil, eris.Errorf("sparql: %s returned status %d", endpoint, resp.StatusCode)
	}

	var res results
	if err := json.Unmarshal(resp.Body, &res); err != nil {
		return nil, eris.Wrap(err, "sparql: decoding results")
	}
	return res.Results.Bindings, nil
}

// SourceURL is the provenance URL recorded for a query: the endpoint with
// the percent-encoded query text appended.
func SourceURL(endpoint, query string) string {
	return endpoint + "?query=" + httputil.Quote(query)
}
