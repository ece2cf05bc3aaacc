// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich looks up DOI metadata used by the batch pipeline: DOI
// existence, publication dates, journal ISSNs and author ORCIDs. Every
// client memoizes its answers in a Cache for the life of the process.
package enrich

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/pdiddy/oci-engine/internal/httputil"
)

// Base URLs for the upstream APIs. Declared as vars so tests can substitute
// httptest servers.
var (
	doiHandleBase   = "https://doi.org/api/handles/"
	crossrefAPIBase = "https://api.crossref.org/works/"
	dataciteAPIBase = "https://api.datacite.org/works/"
	orcidSearchBase = "https://pub.orcid.org/v2.1/search?q="
)

// Fetcher is the HTTP collaborator. *httputil.Client satisfies it.
type Fetcher interface {
	GetWithRetry(ctx context.Context, rawURL string, header http.Header) (*httputil.Response, error)
}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeDOI extracts the DOI from s, which may be a bare DOI or a
// resolver URL, percent-decodes it, drops whitespace and lowercases it.
// ok is false when s holds no "10." DOI.
func NormalizeDOI(s string) (doi string, ok bool) {
	i := strings.Index(s, "10.")
	if i < 0 {
		return "", false
	}
	doi = whitespace.ReplaceAllString(httputil.Unquote(s[i:]), "")
	doi = strings.ToLower(strings.TrimSpace(doi))
	return doi, doi != ""
}

// DOIChecker asks the doi.org handle API whether a DOI is registered.
type DOIChecker struct {
	fetch Fetcher
	cache Cache[bool]
}

// NewDOIChecker returns a DOIChecker using f.
func NewDOIChecker(f Fetcher) *DOIChecker {
	return &DOIChecker{fetch: f}
}

// Exists reports whether the handle API knows doi (responseCode 1). A
// non-200 answer is a definite "no"; transport failures are errors and are
// not cached.
func (d *DOIChecker) Exists(ctx context.Context, doi string) (bool, error) {
	doi, ok := NormalizeDOI(doi)
	if !ok {
		return false, nil
	}
	if v, ok := d.cache.Load(doi); ok {
		return v, nil
	}

	resp, err := d.fetch.GetWithRetry(ctx, doiHandleBase+httputil.Quote(doi), nil)
	if err != nil {
		return false, eris.Wrapf(err, "checking doi %s", doi)
	}
	exists := resp.OK() && gjson.GetBytes(resp.Body, "responseCode").Int() == 1
	return d.cache.Store(doi, exists), nil
}
