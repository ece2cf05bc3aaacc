// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"regexp"

	"go.uber.org/zap"
)

// Dater returns a publication date for a DOI, or "" when it has none.
type Dater interface {
	Date(ctx context.Context, doi string) (string, error)
}

var (
	nonDigit  = regexp.MustCompile(`[^0-9]`)
	datePlain = regexp.MustCompile(`^([0-9]{4})([0-9]{2})?([0-9]{2})?$`)
)

// CleanDate reduces raw to its digits and reads them as YYYY[MM[DD]],
// e.g. "2019/05/03" becomes "2019-05-03". Anything else yields "".
func CleanDate(raw string) string {
	m := datePlain.FindStringSubmatch(nonDigit.ReplaceAllString(raw, ""))
	if m == nil {
		return ""
	}
	d := m[1]
	if m[2] != "" {
		d += "-" + m[2]
	}
	if m[3] != "" {
		d += "-" + m[3]
	}
	return d
}

// PublicationDate returns the cleaned raw date, or else the first date a
// fallback source knows. Fallback failures are logged and skipped.
func PublicationDate(ctx context.Context, doi, raw string, fallbacks ...Dater) string {
	if d := CleanDate(raw); d != "" {
		return d
	}
	for _, f := range fallbacks {
		d, err := f.Date(ctx, doi)
		if err != nil {
			zap.L().Warn("date lookup failed", zap.String("doi", doi), zap.Error(err))
			continue
		}
		if d != "" {
			return d
		}
	}
	return ""
}
