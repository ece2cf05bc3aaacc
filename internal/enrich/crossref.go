// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/pdiddy/oci-engine/internal/httputil"
)

// Work is what the batch pipeline needs from a Crossref record.
type Work struct {
	Date  string
	ISSN  []string
	ORCID []string
}

var (
	orcidPattern = regexp.MustCompile(`....-....-....-....`)
	nonWord      = regexp.MustCompile(`\W`)
)

// Crossref reads works from the Crossref REST API.
type Crossref struct {
	fetch Fetcher
	cache Cache[Work]
}

// NewCrossref returns a Crossref client using f.
func NewCrossref(f Fetcher) *Crossref {
	return &Crossref{fetch: f}
}

// Work returns the cached or freshly fetched record for doi. Unknown DOIs
// yield an empty Work.
func (c *Crossref) Work(ctx context.Context, doi string) (Work, error) {
	doi, ok := NormalizeDOI(doi)
	if !ok {
		return Work{}, nil
	}
	if w, ok := c.cache.Load(doi); ok {
		return w, nil
	}

	resp, err := c.fetch.GetWithRetry(ctx, crossrefAPIBase+httputil.Quote(doi), nil)
	if err != nil {
		return Work{}, eris.Wrapf(err, "crossref %s", doi)
	}
	var w Work
	if resp.OK() {
		w = parseWork(gjson.GetBytes(resp.Body, "message"))
	}
	return c.cache.Store(doi, w), nil
}

// Date returns the issued date of doi, or "".
func (c *Crossref) Date(ctx context.Context, doi string) (string, error) {
	w, err := c.Work(ctx, doi)
	return w.Date, err
}

// ORCIDs returns the author ORCIDs listed for doi.
func (c *Crossref) ORCIDs(ctx context.Context, doi string) ([]string, error) {
	w, err := c.Work(ctx, doi)
	return w.ORCID, err
}

// ShareISSN reports whether both works appeared in a common journal.
func (c *Crossref) ShareISSN(ctx context.Context, a, b string) (bool, error) {
	wa, err := c.Work(ctx, a)
	if err != nil {
		return false, err
	}
	wb, err := c.Work(ctx, b)
	if err != nil {
		return false, err
	}
	return intersects(wa.ISSN, wb.ISSN), nil
}

func parseWork(msg gjson.Result) Work {
	if !msg.Exists() {
		return Work{}
	}
	w := Work{Date: issuedDate(msg.Get("issued.date-parts.0"))}

	if strings.Contains(msg.Get("type").String(), "journal") {
		for _, issn := range msg.Get("ISSN").Array() {
			w.ISSN = append(w.ISSN, strings.ToUpper(nonWord.ReplaceAllString(issn.String(), "")))
		}
	}
	for _, a := range msg.Get("author").Array() {
		if id := orcidPattern.FindString(a.Get("ORCID").String()); id != "" {
			w.ORCID = append(w.ORCID, id)
		}
	}
	return w
}

// issuedDate renders a date-parts triple at the precision it carries. A
// trailing "1" month and day is taken as filler: [2019, 1, 1] is "2019".
func issuedDate(parts gjson.Result) string {
	p := parts.Array()
	if len(p) == 0 || p[0].Type != gjson.Number {
		return ""
	}
	year := p[0].Int()
	part := func(i int) (int64, bool) {
		if i >= len(p) || p[i].Type != gjson.Number {
			return 1, false
		}
		return p[i].Int(), true
	}
	month, hasMonth := part(1)
	day, hasDay := part(2)

	switch {
	case len(p) == 3 && (hasMonth && month != 1 || hasDay && day != 1):
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	case len(p) == 2 && hasMonth:
		return fmt.Sprintf("%04d-%02d", year, month)
	default:
		return fmt.Sprintf("%04d", year)
	}
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}
