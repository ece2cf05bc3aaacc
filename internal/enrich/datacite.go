// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/pdiddy/oci-engine/internal/httputil"
)

// DataCite reads publication years from the DataCite API.
type DataCite struct {
	fetch Fetcher
	cache Cache[string]
}

// NewDataCite returns a DataCite client using f.
func NewDataCite(f Fetcher) *DataCite {
	return &DataCite{fetch: f}
}

// Date returns data.attributes.published for doi, or "".
func (d *DataCite) Date(ctx context.Context, doi string) (string, error) {
	doi, ok := NormalizeDOI(doi)
	if !ok {
		return "", nil
	}
	if v, ok := d.cache.Load(doi); ok {
		return v, nil
	}

	resp, err := d.fetch.GetWithRetry(ctx, dataciteAPIBase+httputil.Quote(doi), nil)
	if err != nil {
		return "", eris.Wrapf(err, "datacite %s", doi)
	}
	var date string
	if resp.OK() {
		date = gjson.GetBytes(resp.Body, "data.attributes.published").String()
	}
	return d.cache.Store(doi, date), nil
}
