// Package comtrade implements the trade-data connector against the
// UN Comtrade bulk API payload contract.
package comtrade

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/provider"
)

// SourceName is the stable batch key for this provider.
const SourceName = "comtrade"

// Config holds the connector's private transport settings.
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns production defaults. The API key must still be
// supplied by the caller.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "https://comtradeapi.un.org/data/v1",
		Timeout:           provider.DefaultTimeout,
		RequestsPerSecond: 2,
		Burst:             1,
	}
}

// Connector fetches trade records.
type Connector struct {
	cfg    *Config
	client *provider.Client
}

var _ provider.Connector = (*Connector)(nil)

// New creates a comtrade connector. A missing base URL is a configuration
// error and fatal here, never per-batch.
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
func (c *Connector) Domain() core.Domain { return core.DomainTrade }

// Fetch implements provider.Connector.
func (c *Connector) Fetch(ctx context.Context, countries []string, params provider.FetchParams) (*core.ProviderPayload, error) {
	query := url.Values{}
	query.Set("countries", strings.Join(countries, ","))
	if params.Period != "" {
		query.Set("period", params.Period)
	}
	if c.cfg.APIKey != "" {
		query.Set("subscription-key", c.cfg.APIKey)
	}
	return provider.FetchPayload(ctx, c.client, c.cfg.BaseURL+"/trade", query, SourceName, core.DomainTrade)
}

// HealthCheck implements provider.Connector.
func (c *Connector) HealthCheck(ctx context.Context) provider.HealthStatus {
	return provider.ProbeHealth(ctx, c.client, c.cfg.BaseURL+"/health", SourceName)
}
