// Package worldbank implements the macroeconomic-data connector against
// the World Bank indicators payload contract.
package worldbank

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/provider"
)

// SourceName is the stable batch key for this provider.
const SourceName = "worldbank"

// Config holds the connector's private transport settings.
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "https://api.worldbank.org/v2",
		Timeout:           provider.DefaultTimeout,
		RequestsPerSecond: 5,
		Burst:             2,
	}
}

// Connector fetches macroeconomic records.
type Connector struct {
	cfg    *Config
	client *provider.Client
}

var _ provider.Connector = (*Connector)(nil)

// New creates a worldbank connector.
func New(cfg *Config) (*Connector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, provider.ErrBaseURLRequired
	}
	return &Connector{
		cfg:    cfg,
		client: provider.NewClient(SourceName, cfg.Timeout, cfg.RequestsPerSecond, cfg.Burst),
	}, nil
}

// Name implements provider.Connector.
func (c *Connector) Name() string { return SourceName }

// Domain implements provider.Connector.
func (c *Connector) Domain() core.Domain { return core.DomainMacroeconomic }

// Fetch implements provider.Connector.
func (c *Connector) Fetch(ctx context.Context, countries []string, params provider.FetchParams) (*core.ProviderPayload, error) {
	query := url.Values{}
	query.Set("countries", strings.Join(countries, ","))
	query.Set("format", "json")
	if params.Period != "" {
		query.Set("date", params.Period)
	}
	if c.cfg.APIKey != "" {
		query.Set("api_key", c.cfg.APIKey)
	}
	return provider.FetchPayload(ctx, c.client, c.cfg.BaseURL+"/indicators", query, SourceName, core.DomainMacroeconomic)
}

// HealthCheck implements provider.Connector.
func (c *Connector) HealthCheck(ctx context.Context) provider.HealthStatus {
	return provider.ProbeHealth(ctx, c.client, c.cfg.BaseURL+"/health", SourceName)
}
