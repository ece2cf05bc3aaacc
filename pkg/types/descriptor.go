// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"slices"

	"go.yaml.in/yaml/v3"
)

// ServiceDescriptor configures one upstream service that can resolve
// citations. Exactly one of API (a REST URL template) and Endpoint (a SPARQL
// endpoint) is set.
type ServiceDescriptor struct {
	// Name labels provenance of results from this service.
	Name string `json:"name" yaml:"name"`

	// API is a REST URL template containing [[CITING]] and [[CITED]].
	API string `json:"api,omitempty" yaml:"api,omitempty"`

	// Endpoint is the SPARQL endpoint URL ("tp" in descriptor files).
	Endpoint string `json:"tp,omitempty" yaml:"tp,omitempty"`

	// Query is the SPARQL text for Endpoint descriptors or the field path
	// lists for API descriptors.
	Query QuerySpec `json:"query" yaml:"query"`

	// UseIt must be "yes" for the descriptor to be considered.
	UseIt string `json:"use_it" yaml:"use_it"`

	// Preprocess names transforms applied, in order, to each prefix-stripped
	// numeral before it is substituted into API or Query (e.g. "decode").
	Preprocess []string `json:"preprocess,omitempty" yaml:"preprocess,omitempty"`

	// Prefix lists the supplier prefixes this service is authoritative for.
	Prefix []string `json:"prefix" yaml:"prefix"`

	// IDType names the identifier scheme, e.g. "doi".
	IDType string `json:"id_type" yaml:"id_type"`

	// IDShape is the entity URL template, e.g. "http://dx.doi.org/([[XXX__decode]])".
	IDShape string `json:"id_shape" yaml:"id_shape"`

	// CitationType is "reference" (default) or "supplement".
	CitationType string `json:"citation_type,omitempty" yaml:"citation_type,omitempty"`
}

// Usable reports whether the descriptor is switched on.
func (d ServiceDescriptor) Usable() bool {
	return d.UseIt == "yes"
}

// Covers reports whether both supplier prefixes belong to this service.
func (d ServiceDescriptor) Covers(citingPrefix, citedPrefix string) bool {
	return slices.Contains(d.Prefix, citingPrefix) && slices.Contains(d.Prefix, citedPrefix)
}

// IsSPARQL reports whether the descriptor targets a SPARQL endpoint.
func (d ServiceDescriptor) IsSPARQL() bool {
	return d.Endpoint != ""
}

// Check reports configuration mistakes that make a descriptor unusable.
func (d ServiceDescriptor) Check() error {
	switch {
	case d.API == "" && d.Endpoint == "":
		return fmt.Errorf("service %q: neither api nor tp is set", d.Name)
	case d.API != "" && d.Endpoint != "":
		return fmt.Errorf("service %q: both api and tp are set", d.Name)
	case d.IsSPARQL() && d.Query.SPARQL == "":
		return fmt.Errorf("service %q: tp requires a query string", d.Name)
	case !d.IsSPARQL() && d.Query.Paths == nil:
		return fmt.Errorf("service %q: api requires a query mapping", d.Name)
	}
	return nil
}

// FieldPaths holds one priority list of access paths per extracted field.
type FieldPaths struct {
	Citing     []string `json:"citing" yaml:"citing"`
	Cited      []string `json:"cited" yaml:"cited"`
	CitingDate []string `json:"citing_date" yaml:"citing_date"`
	CitedDate  []string `json:"cited_date" yaml:"cited_date"`
	Creation   []string `json:"creation" yaml:"creation"`
	Timespan   []string `json:"timespan" yaml:"timespan"`
}

// QuerySpec is the "query" member of a descriptor: a SPARQL string or a
// mapping of field paths.
type QuerySpec struct {
	SPARQL string
	Paths  *FieldPaths
}

// UnmarshalYAML accepts either a scalar (SPARQL) or a mapping (paths).
func (q *QuerySpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&q.SPARQL)
	case yaml.MappingNode:
		q.Paths = &FieldPaths{}
		return node.Decode(q.Paths)
	default:
		return fmt.Errorf("line %d: query must be a string or a mapping", node.Line)
	}
}

// UnmarshalJSON accepts either a string (SPARQL) or an object (paths).
func (q *QuerySpec) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &q.SPARQL)
	}
	q.Paths = &FieldPaths{}
	return json.Unmarshal(data, q.Paths)
}

// MarshalJSON writes the populated variant.
func (q QuerySpec) MarshalJSON() ([]byte, error) {
	if q.Paths != nil {
		return json.Marshal(q.Paths)
	}
	return json.Marshal(q.SPARQL)
}

// MarshalYAML writes the populated variant.
func (q QuerySpec) MarshalYAML() (any, error) {
	if q.Paths != nil {
		return q.Paths, nil
	}
	return q.SPARQL, nil
}
