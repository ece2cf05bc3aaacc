// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by every component that talks
// to a remote service.
type HTTPConfig struct {
	// Timeout bounds each individual request (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// RatePerHost caps requests per second to a single host. Zero disables
	// limiting.
	RatePerHost float64 `json:"rate_per_host" yaml:"rate_per_host" mapstructure:"rate_per_host"`

	// MaxRetries is the number of 429 retries used by batch enrichment
	// clients. The resolver never retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ResolverConfig points at the two artifacts the resolver cannot run
// without.
type ResolverConfig struct {
	// LookupPath is the CSV file mapping two-digit codes to characters.
	LookupPath string `json:"lookup" yaml:"lookup" mapstructure:"lookup"`

	// ServicesPath is the JSON or YAML file holding the service descriptors.
	ServicesPath string `json:"services" yaml:"services" mapstructure:"services"`
}

// RenderConfig holds settings for the output serializers.
type RenderConfig struct {
	// BaseURL is the IRI prefix for citation and identifier entities
	// (e.g. "https://w3id.org/oc/virtual/").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Agent is the provider name written into Scholix link records.
	Agent string `json:"agent" yaml:"agent" mapstructure:"agent"`

	// License is the license IRI written into Scholix link records.
	License string `json:"license" yaml:"license" mapstructure:"license"`
}

// BatchConfig holds settings for the "create new citations" pipeline.
type BatchConfig struct {
	// Prefix is the supplier prefix assigned to new OCIs (default "050").
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`

	// BaseURL is the resolver prepended to DOIs (default "http://dx.doi.org/").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// CorpusBase is the IRI prefix for the produced RDF entities.
	CorpusBase string `json:"corpus_base" yaml:"corpus_base" mapstructure:"corpus_base"`

	// ServiceName labels provenance of every produced citation (default "CROCI").
	ServiceName string `json:"service_name" yaml:"service_name" mapstructure:"service_name"`

	// DataDir receives the CSV and RDF output tree.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// ORCIDKey is the bearer token for the ORCID public API. Optional.
	ORCIDKey string `json:"orcid_key,omitempty" yaml:"orcid_key,omitempty" mapstructure:"orcid_key"`
}

// IndexConfig holds settings for the SQLite citation index.
type IndexConfig struct {
	// Path is the SQLite database file (default "index/citations.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig selects the zap logger level and encoding.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}
