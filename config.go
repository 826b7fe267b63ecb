// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package geoflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/poiesic/geoflow/ai"
	"github.com/poiesic/geoflow/provider/comtrade"
	"github.com/poiesic/geoflow/provider/epi"
	"github.com/poiesic/geoflow/provider/worldbank"
)

var (
	// ErrDatabasePathRequired is returned when the database path is empty.
	ErrDatabasePathRequired = errors.New("database path is required")

	// ErrNoProvidersEnabled is returned when every provider is disabled.
	ErrNoProvidersEnabled = errors.New("at least one provider must be enabled")
)

// Duration wraps time.Duration so it can be written as "30s" or "2160h"
// in TOML files.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// DatabaseConfig locates the badger store on disk.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// ProviderConfig holds the transport settings for one data provider.
type ProviderConfig struct {
	Enabled           bool     `toml:"enabled"`
	BaseURL           string   `toml:"base_url"`
	APIKey            string   `toml:"api_key"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Burst             int      `toml:"burst"`
}

// ProvidersConfig groups the per-provider sections.
type ProvidersConfig struct {
	Comtrade  ProviderConfig `toml:"comtrade"`
	WorldBank ProviderConfig `toml:"worldbank"`
	EPI       ProviderConfig `toml:"epi"`
}

// EmbeddingConfig selects the embedding endpoint and model.
type EmbeddingConfig struct {
	Host  string `toml:"host"`
	Model string `toml:"model"`
}

// RetentionConfig controls pruning of aged-out data.
// A zero PruneAge disables pruning.
type RetentionConfig struct {
	PruneAge Duration `toml:"prune_age"`
}

// Config is the full service configuration, normally loaded from a TOML
// file. Zero-value sections fall back to defaults in DefaultServiceConfig.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Providers ProvidersConfig `toml:"providers"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Retention RetentionConfig `toml:"retention"`
}

// DefaultServiceConfig returns a Config with production defaults: all
// three providers enabled against their public endpoints, a local
// embedding endpoint, and pruning disabled.
func DefaultServiceConfig() *Config {
	ct := comtrade.DefaultConfig()
	wb := worldbank.DefaultConfig()
	ep := epi.DefaultConfig()
	emb := ai.DefaultConfig()

	return &Config{
		Database: DatabaseConfig{Path: "geoflow.db"},
		Providers: ProvidersConfig{
			Comtrade: ProviderConfig{
				Enabled:           true,
				BaseURL:           ct.BaseURL,
				Timeout:           Duration{ct.Timeout},
				RequestsPerSecond: ct.RequestsPerSecond,
				Burst:             ct.Burst,
			},
			WorldBank: ProviderConfig{
				Enabled:           true,
				BaseURL:           wb.BaseURL,
				Timeout:           Duration{wb.Timeout},
				RequestsPerSecond: wb.RequestsPerSecond,
				Burst:             wb.Burst,
			},
			EPI: ProviderConfig{
				Enabled:           true,
				BaseURL:           ep.BaseURL,
				Timeout:           Duration{ep.Timeout},
				RequestsPerSecond: ep.RequestsPerSecond,
				Burst:             ep.Burst,
			},
		},
		Embedding: EmbeddingConfig{
			Host:  emb.EmbeddingHost,
			Model: emb.EmbeddingModel,
		},
	}
}

// LoadConfig reads a TOML configuration file. Values missing from the
// file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultServiceConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return ErrDatabasePathRequired
	}

	enabled := 0
	for name, pc := range map[string]ProviderConfig{
		"comtrade":  c.Providers.Comtrade,
		"worldbank": c.Providers.WorldBank,
		"epi":       c.Providers.EPI,
	} {
		if !pc.Enabled {
			continue
		}
		enabled++
		if strings.TrimSpace(pc.BaseURL) == "" {
			return fmt.Errorf("provider %s: base_url is required", name)
		}
		if pc.RequestsPerSecond < 0 {
			return fmt.Errorf("provider %s: requests_per_second must not be negative", name)
		}
	}
	if enabled == 0 {
		return ErrNoProvidersEnabled
	}

	aiCfg := c.embeddingConfig()
	if err := aiCfg.Validate(); err != nil {
		return err
	}

	if c.Retention.PruneAge.Duration < 0 {
		return errors.New("retention prune_age must not be negative")
	}

	return nil
}

func (c *Config) embeddingConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
	)
}
