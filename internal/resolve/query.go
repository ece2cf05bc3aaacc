// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"regexp"
	"strings"

	"github.com/pdiddy/oci-engine/internal/citation"
	"github.com/pdiddy/oci-engine/internal/diag"
	"github.com/pdiddy/oci-engine/internal/render"
	"github.com/pdiddy/oci-engine/pkg/types"
)

const ociScheme = "oci:"

// ValidationPattern is the syntax every OCI half must satisfy.
const ValidationPattern = `^0[1-9]+0[0-9]+$`

var validationRegexp = regexp.MustCompile(ValidationPattern)

// Query is a lookup session for one OCI. It remembers its validation
// verdict and collects diagnostics. A Query is not safe for concurrent use.
type Query struct {
	engine *Engine
	oci    string
	log    diag.Log

	checked bool
	valid   bool
}

// Query starts a session for oci, which is trimmed and lowercased.
func (e *Engine) Query(oci string) *Query {
	q := &Query{engine: e, oci: strings.ToLower(strings.TrimSpace(oci))}
	if q.oci == "" {
		q.log.Warn("init", "No OCI specified!")
	}
	return q
}

// OCI returns the identifier as normalized so far.
func (q *Query) OCI() string {
	return q.oci
}

// Log returns the session's diagnostics.
func (q *Query) Log() *diag.Log {
	return &q.log
}

func (q *Query) halves() []string {
	return strings.Split(strings.TrimPrefix(q.oci, ociScheme), "-")
}

// Validate checks the OCI syntax and that one service covers both supplier
// prefixes. The verdict is computed once; later calls return it without
// new diagnostics.
func (q *Query) Validate() bool {
	if q.checked {
		return q.valid
	}
	q.checked = true
	const op = "validate"

	if !strings.HasPrefix(q.oci, ociScheme) {
		q.oci = ociScheme + q.oci
		q.log.Warn(op, "The OCI specified as input doesn't start with the 'oci:' prefix. "+
			"This has been automatically added, resulting in the OCI '%s'.", q.oci)
	}

	halves := q.halves()
	syntaxOK := len(halves) == 2
	for _, h := range halves {
		syntaxOK = syntaxOK && validationRegexp.MatchString(h)
	}
	if !syntaxOK {
		q.log.Error(op, "The OCI '%s' is not syntactically correct, since at least one of the two "+
			"identifiers of the citing and cited entities described by the OCI are not compliant "+
			"with the following regular expression: '%s'.", q.oci, ValidationPattern)
		return false
	}

	if q.engine.services == nil {
		q.log.Error(op, "The OCI '%s' cannot be checked against any supplier since no service "+
			"configuration has been loaded.", q.oci)
		return false
	}

	citingPrefix, _, _ := splitPrefix(halves[0])
	citedPrefix, _, _ := splitPrefix(halves[1])
	for _, d := range q.engine.services {
		if d.Covers(citingPrefix, citedPrefix) {
			q.valid = true
			break
		}
	}

	if q.valid {
		q.log.Info(op, "The OCI '%s' is syntactically valid.", q.oci)
	} else {
		q.log.Error(op, "The supplier prefixes '%s' and '%s' used in the identifiers of the citing "+
			"and cited entities described by the OCI '%s' must be assigned to the same supplier. "+
			"A list of all the available suppliers is available at http://opencitations.net/oci.",
			citingPrefix, citedPrefix, q.oci)
	}
	return q.valid
}

// Citation validates the OCI and resolves it. It returns (nil, nil) when
// the OCI is invalid or no service knows the citation; the reason is in
// the log.
func (q *Query) Citation(ctx context.Context) (*types.Citation, error) {
	const op = "get_citation_object"
	if !q.Validate() {
		q.log.Error(op, "No citation data can be returned since the OCI specified is not valid.")
		return nil, nil
	}

	h := q.halves()
	res, err := q.engine.Resolve(ctx, h[0], h[1], &q.log)
	if err != nil {
		return nil, err
	}
	if res == nil {
		q.log.Info(op, "No citation data have been found for the OCI '%s'. While the OCI specified "+
			"is syntactically valid, it is possible that it does not identify any citation at all.", q.oci)
		return nil, nil
	}

	return citation.New(citation.Params{
		OCI:           q.oci,
		CitingURL:     res.CitingURL,
		CitingPubDate: res.CitingDate,
		CitedURL:      res.CitedURL,
		CitedPubDate:  res.CitedDate,
		Creation:      res.Creation,
		Timespan:      res.Timespan,
		ProvAgentURL:  citation.AgentURL,
		Source:        res.Source,
		ProvDate:      q.engine.now().Format("2006-01-02T15:04:05"),
		ServiceName:   res.ServiceName,
		IDType:        res.IDType,
		IDShape:       res.IDShape,
		CitationType:  res.CitationType,
	}), nil
}

// Render resolves the OCI and serializes it. It returns "" with a nil error
// when there is nothing to render.
func (q *Query) Render(ctx context.Context, format string, opts render.Options) (string, error) {
	c, err := q.Citation(ctx)
	if err != nil || c == nil {
		return "", err
	}
	return render.Render(c, render.ParseFormat(format), opts)
}
