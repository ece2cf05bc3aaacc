// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared records passed between the codec, the
// resolver, the date model and the serializers.
package types

// CitationType distinguishes ordinary references from supplement links.
type CitationType string

const (
	CitationReference  CitationType = "reference"
	CitationSupplement CitationType = "supplement"
)

// ParseCitationType maps a descriptor value onto a CitationType. Anything
// other than "supplement" is a reference.
func ParseCitationType(s string) CitationType {
	if CitationType(s) == CitationSupplement {
		return CitationSupplement
	}
	return CitationReference
}

// Citation is the resolved record for one OCI.
//
// Dates are ISO 8601 strings at year, month or day precision. Duration is an
// ISO 8601 duration such as "P2Y3M" or "-P1Y". Empty strings mean unknown.
type Citation struct {
	// OCI is the full identifier, including the "oci:" prefix.
	OCI string `json:"oci" yaml:"oci"`

	// CitingURL and CitedURL identify the two entities.
	CitingURL string `json:"citing_url" yaml:"citing_url"`
	CitedURL  string `json:"cited_url" yaml:"cited_url"`

	CitingPubDate string `json:"citing_pub_date,omitempty" yaml:"citing_pub_date,omitempty"`
	CitedPubDate  string `json:"cited_pub_date,omitempty" yaml:"cited_pub_date,omitempty"`

	// CreationDate is the date the citation was made, which is the citing
	// entity's publication date when known.
	CreationDate string `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`

	// Duration is the signed interval between the citing and the cited
	// publication dates.
	Duration string `json:"duration,omitempty" yaml:"duration,omitempty"`

	// ProvAgentURL identifies the software that produced the record.
	ProvAgentURL string `json:"prov_agent_url" yaml:"prov_agent_url"`

	// Source is the URL the data was taken from.
	Source string `json:"source" yaml:"source"`

	// ProvDate is the timestamp of the resolution (RFC 3339, seconds).
	ProvDate string `json:"prov_date" yaml:"prov_date"`

	ServiceName  string       `json:"service_name" yaml:"service_name"`
	IDType       string       `json:"id_type" yaml:"id_type"`
	IDShape      string       `json:"id_shape" yaml:"id_shape"`
	CitationType CitationType `json:"citation_type" yaml:"citation_type"`

	JournalSelfCitation bool `json:"journal_sc" yaml:"journal_sc"`
	AuthorSelfCitation  bool `json:"author_sc" yaml:"author_sc"`
}

// YesNo renders a self-citation flag the way the CSV and JSON outputs
// expect it.
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
