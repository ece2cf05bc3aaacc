// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation builds Citation records and implements the date and
// duration arithmetic that ties creation date, timespan and the two
// publication dates together.
package citation

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/oci-engine/internal/httputil"
	"github.com/pdiddy/oci-engine/pkg/types"
)

// AgentURL identifies this software in provenance records.
const AgentURL = "https://github.com/opencitations/oci/blob/master/oci.py"

// Params are the raw inputs to New. Dates may carry more than day
// precision; they are truncated.
type Params struct {
	OCI           string
	CitingURL     string
	CitingPubDate string
	CitedURL      string
	CitedPubDate  string
	Creation      string
	Timespan      string
	ProvAgentURL  string
	Source        string
	ProvDate      string
	ServiceName   string
	IDType        string
	IDShape       string
	CitationType  string
	JournalSC     bool
	AuthorSC      bool
}

// New builds a Citation and fills in the derived dates:
//
//   - a dated citing entity fixes the creation date, and when the cited
//     entity is dated too, the duration between them;
//   - a missing citing date falls back to the creation date;
//   - a known creation date and duration fix the cited date.
func New(p Params) *types.Citation {
	c := &types.Citation{
		OCI:                 p.OCI,
		CitingURL:           p.CitingURL,
		CitedURL:            p.CitedURL,
		CitingPubDate:       truncate(p.CitingPubDate),
		CitedPubDate:        truncate(p.CitedPubDate),
		CreationDate:        p.Creation,
		Duration:            p.Timespan,
		ProvAgentURL:        p.ProvAgentURL,
		Source:              p.Source,
		ProvDate:            p.ProvDate,
		ServiceName:         p.ServiceName,
		IDType:              p.IDType,
		IDShape:             p.IDShape,
		CitationType:        types.ParseCitationType(p.CitationType),
		JournalSelfCitation: p.JournalSC,
		AuthorSelfCitation:  p.AuthorSC,
	}

	if ContainsYears(c.CitingPubDate) {
		c.CreationDate = c.CitingPubDate
		if ContainsYears(c.CitedPubDate) {
			if d, err := Duration(c.CitingPubDate, c.CitedPubDate); err == nil {
				c.Duration = d
			} else {
				zap.L().Debug("citation: keeping supplied timespan", zap.String("oci", p.OCI), zap.Error(err))
			}
		}
	}

	if c.CitingPubDate == "" && c.CreationDate != "" {
		c.CitingPubDate = c.CreationDate
	}

	if c.CreationDate != "" && c.Duration != "" {
		if d, err := CitedDate(c.CreationDate, c.Duration); err == nil {
			c.CitedPubDate = d
		} else {
			zap.L().Debug("citation: cannot derive cited date", zap.String("oci", p.OCI), zap.Error(err))
		}
	}

	return c
}

func truncate(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

var placeholder = regexp.MustCompile(`\[\[[^\]]+\]\]`)

// EntityID recovers an identifier from an entity URL using the descriptor's
// id shape, e.g. shape "http://dx.doi.org/([[XXX__decode]])" turns
// "http://dx.doi.org/10.1%2Fabc" into "10.1/abc". Shapes containing
// "XXX__decode]]" percent-decode the result.
func EntityID(shape, entityURL string) string {
	re, err := regexp.Compile(placeholder.ReplaceAllString(shape, ".+"))
	if err != nil {
		return entityURL
	}
	id := re.ReplaceAllString(entityURL, "${1}")
	if strings.Contains(shape, "XXX__decode]]") {
		return httputil.Unquote(id)
	}
	return id
}

// CitingID is EntityID applied to the citing URL.
func CitingID(c *types.Citation) string {
	return EntityID(c.IDShape, c.CitingURL)
}

// CitedID is EntityID applied to the cited URL.
func CitedID(c *types.Citation) string {
	return EntityID(c.IDShape, c.CitedURL)
}
