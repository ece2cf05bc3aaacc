// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render serializes Citation records as JSON, CSV, Scholix and RDF.
package render

import (
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/pdiddy/oci-engine/internal/citation"
	"github.com/pdiddy/oci-engine/pkg/types"
)

// Defaults for Options.
const (
	DefaultBaseURL = "https://w3id.org/oc/virtual/"
	DefaultAgent   = "OpenCitations"
	DefaultLicense = "https://creativecommons.org/publicdomain/zero/1.0/legalcode"
)

// Format is a canonical output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatScholix  Format = "scholix"
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "nt11"
	FormatJSONLD   Format = "json-ld"
	FormatRDFXML   Format = "xml"
)

var formatAliases = map[string]Format{
	"xml":                 FormatRDFXML,
	"rdfxml":              FormatRDFXML,
	"rdf/xml":             FormatRDFXML,
	"application/rdf+xml": FormatRDFXML,
	"turtle":              FormatTurtle,
	"ttl":                 FormatTurtle,
	"rdf":                 FormatTurtle,
	"text/turtle":         FormatTurtle,
	"json":                FormatJSON,
	"scholix":             FormatScholix,
	"application/json":    FormatJSON,
	"json-ld":             FormatJSONLD,
	"jsonld":              FormatJSONLD,
	"application/ld+json": FormatJSONLD,
	"n-triples":           FormatNTriples,
	"ntriples":            FormatNTriples,
	"nt":                  FormatNTriples,
	"text/plain":          FormatNTriples,
	"text/n-triples":      FormatNTriples,
	"csv":                 FormatCSV,
	"text/csv":            FormatCSV,
}

// ErrUnsupportedFormat is returned for formats recognised by name but not
// produced by this package.
var ErrUnsupportedFormat = eris.New("unsupported output format")

// ParseFormat maps a format name or media type onto a Format. Unknown
// names select JSON.
func ParseFormat(name string) Format {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f
	}
	return FormatJSON
}

// Options configure the serializers. Zero fields take the package defaults.
type Options struct {
	BaseURL string
	Agent   string
	License string
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Agent == "" {
		o.Agent = DefaultAgent
	}
	if o.License == "" {
		o.License = DefaultLicense
	}
	return o
}

// Render serializes c in format f.
func Render(c *types.Citation, f Format, opts Options) (string, error) {
	opts = opts.withDefaults()
	switch f {
	case FormatJSON:
		return JSON(c)
	case FormatCSV:
		return CSV(c)
	case FormatScholix:
		return Scholix(c, opts)
	case FormatTurtle:
		return RDF(c, opts.BaseURL, AllParts).Turtle(), nil
	case FormatNTriples:
		return RDF(c, opts.BaseURL, AllParts).NTriples(), nil
	case FormatJSONLD:
		return RDF(c, opts.BaseURL, AllParts).JSONLD()
	default:
		return "", eris.Wrapf(ErrUnsupportedFormat, "%s", f)
	}
}

func bareOCI(c *types.Citation) string {
	return strings.TrimPrefix(c.OCI, "oci:")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Record is the flat citation row shared by the JSON and CSV outputs.
type Record struct {
	OCI       string  `json:"oci" csv:"oci"`
	Citing    string  `json:"citing" csv:"citing"`
	Cited     string  `json:"cited" csv:"cited"`
	Creation  *string `json:"creation" csv:"creation"`
	Timespan  *string `json:"timespan" csv:"timespan"`
	JournalSC string  `json:"journal_sc" csv:"journal_sc"`
	AuthorSC  string  `json:"author_sc" csv:"author_sc"`
}

// ProvRecord is the flat provenance row shared by the JSON and CSV outputs.
type ProvRecord struct {
	OCI      string `json:"oci" csv:"oci"`
	Agent    string `json:"agent" csv:"agent"`
	Source   string `json:"source" csv:"source"`
	Datetime string `json:"datetime" csv:"datetime"`
}

// NewRecord flattens c.
func NewRecord(c *types.Citation) Record {
	return Record{
		OCI:       bareOCI(c),
		Citing:    citation.CitingID(c),
		Cited:     citation.CitedID(c),
		Creation:  optional(c.CreationDate),
		Timespan:  optional(c.Duration),
		JournalSC: types.YesNo(c.JournalSelfCitation),
		AuthorSC:  types.YesNo(c.AuthorSelfCitation),
	}
}

// NewProvRecord flattens the provenance of c.
func NewProvRecord(c *types.Citation) ProvRecord {
	return ProvRecord{
		OCI:      bareOCI(c),
		Agent:    c.ProvAgentURL,
		Source:   c.Source,
		Datetime: c.ProvDate,
	}
}

// JSON renders the citation record.
func JSON(c *types.Citation) (string, error) {
	return marshalIndent(NewRecord(c))
}

// JSONProv renders the provenance record.
func JSONProv(c *types.Citation) (string, error) {
	return marshalIndent(NewProvRecord(c))
}

// CSV renders the citation record with a header row.
func CSV(c *types.Citation) (string, error) {
	b, err := csvutil.Marshal([]Record{NewRecord(c)})
	if err != nil {
		return "", eris.Wrap(err, "csv: citation")
	}
	return string(b), nil
}

// CSVProv renders the provenance record with a header row.
func CSVProv(c *types.Citation) (string, error) {
	b, err := csvutil.Marshal([]ProvRecord{NewProvRecord(c)})
	if err != nil {
		return "", eris.Wrap(err, "csv: provenance")
	}
	return string(b), nil
}

type scholixName struct {
	Name string `json:"Name"`
}

type scholixIdentifier struct {
	ID       string `json:"ID"`
	IDScheme string `json:"IDScheme"`
	IDURL    string `json:"IDURL"`
}

type scholixEntity struct {
	Identifier      scholixIdentifier `json:"Identifier"`
	Type            scholixName       `json:"Type"`
	PublicationDate string            `json:"PublicationDate,omitempty"`
}

type scholixLink struct {
	LinkPublicationDate string        `json:"LinkPublicationDate"`
	LinkProvider        []scholixName `json:"LinkProvider"`
	RelationshipType    scholixName   `json:"RelationshipType"`
	LicenseURL          string        `json:"LicenseURL"`
	Source              scholixEntity `json:"Source"`
	Target              scholixEntity `json:"Target"`
}

// Scholix renders a Scholix link record.
func Scholix(c *types.Citation, opts Options) (string, error) {
	opts = opts.withDefaults()

	rel := "References"
	if c.CitationType == types.CitationSupplement {
		rel = "IsSupplementedBy"
	}

	link := scholixLink{
		LinkPublicationDate: c.ProvDate,
		LinkProvider:        []scholixName{{opts.Agent}, {c.ServiceName}},
		RelationshipType:    scholixName{rel},
		LicenseURL:          opts.License,
		Source: scholixEntity{
			Identifier:      scholixIdentifier{ID: citation.CitingID(c), IDScheme: c.IDType, IDURL: c.CitingURL},
			Type:            scholixName{"literature"},
			PublicationDate: c.CitingPubDate,
		},
		Target: scholixEntity{
			Identifier:      scholixIdentifier{ID: citation.CitedID(c), IDScheme: c.IDType, IDURL: c.CitedURL},
			Type:            scholixName{"literature"},
			PublicationDate: c.CitedPubDate,
		},
	}
	return marshalIndent(link)
}
