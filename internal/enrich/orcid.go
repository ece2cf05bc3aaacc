// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/pdiddy/oci-engine/internal/httputil"
)

// ORCIDSource is anything else that knows the ORCIDs of a DOI's authors.
type ORCIDSource interface {
	ORCIDs(ctx context.Context, doi string) ([]string, error)
}

// ORCID searches the ORCID public API for researchers who list a DOI among
// their works, and merges in ORCIDs from the extra sources.
type ORCID struct {
	fetch  Fetcher
	header http.Header
	extra  []ORCIDSource
	cache  Cache[[]string]
}

// NewORCID returns an ORCID client. key may be empty; the public API then
// applies anonymous limits.
func NewORCID(f Fetcher, key string, extra ...ORCIDSource) *ORCID {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	if key != "" {
		h.Set("Authorization", "Bearer "+key)
	}
	return &ORCID{fetch: f, header: h, extra: extra}
}

// ORCIDs returns the ORCIDs associated with doi.
func (o *ORCID) ORCIDs(ctx context.Context, doi string) ([]string, error) {
	doi, ok := NormalizeDOI(doi)
	if !ok {
		return nil, nil
	}
	if v, ok := o.cache.Load(doi); ok {
		return v, nil
	}

	q := fmt.Sprintf(`doi-self:"%s" OR doi-self:"%s"`, doi, strings.ToUpper(doi))
	resp, err := o.fetch.GetWithRetry(ctx, orcidSearchBase+httputil.Quote(q), o.header)
	if err != nil {
		return nil, eris.Wrapf(err, "orcid search %s", doi)
	}

	var ids []string
	if resp.OK() {
		for _, r := range gjson.GetBytes(resp.Body, "result.#.orcid-identifier.path").Array() {
			ids = append(ids, r.String())
		}
	}
	for _, src := range o.extra {
		more, err := src.ORCIDs(ctx, doi)
		if err != nil {
			return nil, err
		}
		for _, id := range more {
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	return o.cache.Store(doi, ids), nil
}

// ShareORCID reports whether the two works have an author in common.
func (o *ORCID) ShareORCID(ctx context.Context, a, b string) (bool, error) {
	ia, err := o.ORCIDs(ctx, a)
	if err != nil {
		return false, err
	}
	ib, err := o.ORCIDs(ctx, b)
	if err != nil {
		return false, err
	}
	return intersects(ia, ib), nil
}
