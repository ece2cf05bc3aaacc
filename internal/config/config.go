// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads oci-engine settings from file and environment and
// sets up the global logger.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/oci-engine/pkg/types"
)

// Name is the config file stem and the env prefix source.
const Name = "oci-engine"

// EnvPrefix prefixes every environment override, e.g. OCI_ENGINE_LOG_LEVEL.
const EnvPrefix = "OCI_ENGINE"

// Config holds the full application configuration.
type Config struct {
	Resolver types.ResolverConfig `yaml:",inline" mapstructure:",squash"`
	HTTP     types.HTTPConfig     `yaml:"http" mapstructure:"http"`
	Render   types.RenderConfig   `yaml:"render" mapstructure:"render"`
	Batch    types.BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Index    types.IndexConfig    `yaml:"index" mapstructure:"index"`
	Log      types.LogConfig      `yaml:"log" mapstructure:"log"`
}

// Load reads configuration. When file is empty, oci-engine.yaml is looked up
// in the working directory and then in ~/.config/oci-engine; a missing file
// is not an error. An explicit file must exist.
func Load(file string) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("lookup", "lookup.csv")
	v.SetDefault("services", "oci.json")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.user_agent", "OCI / OpenCitations (via OpenCitations - http://opencitations.net; mailto:contact@opencitations.net)")
	v.SetDefault("http.rate_per_host", 5)
	v.SetDefault("http.max_retries", 5)
	v.SetDefault("render.base_url", "https://w3id.org/oc/virtual/")
	v.SetDefault("render.agent", "OpenCitations")
	v.SetDefault("render.license", "https://creativecommons.org/publicdomain/zero/1.0/legalcode")
	v.SetDefault("batch.prefix", "050")
	v.SetDefault("batch.base_url", "http://dx.doi.org/")
	v.SetDefault("batch.corpus_base", "https://w3id.org/oc/index/croci/")
	v.SetDefault("batch.service_name", "CROCI")
	v.SetDefault("batch.data_dir", "data")
	v.SetDefault("batch.orcid_key", "")
	v.SetDefault("index.path", "index/citations.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		zap.L().Debug("config file loaded", zap.String("path", used))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// InitLogger initializes the global zap logger. Format "json" selects the
// production encoder; anything else the development console encoder.
func InitLogger(cfg types.LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
