package mock

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/provider"
)

// Connector is a test double for provider.Connector.
// It allows custom behavior injection via function fields and falls back
// to deterministic fixture payloads derived from the source name and
// country code, so tests get stable data without a network.
type Connector struct {
	// SourceName keys this connector's results in a batch.
	SourceName string

	// DataDomain selects which record variant fixture payloads carry.
	DataDomain core.Domain

	// FetchFunc is called by Fetch if set.
	FetchFunc func(ctx context.Context, countries []string, params provider.FetchParams) (*core.ProviderPayload, error)

	// HealthFunc is called by HealthCheck if set.
	HealthFunc func(ctx context.Context) provider.HealthStatus

	callCount int
}

var _ provider.Connector = (*Connector)(nil)

// NewConnector creates a mock connector with deterministic default behavior.
// Returns the concrete type so tests can inspect call counts.
func NewConnector(name string, domain core.Domain) *Connector {
	return &Connector{SourceName: name, DataDomain: domain}
}

// Name implements provider.Connector.
func (c *Connector) Name() string { return c.SourceName }

// Domain implements provider.Connector.
func (c *Connector) Domain() core.Domain { return c.DataDomain }

// CallCount returns the number of Fetch calls.
func (c *Connector) CallCount() int { return c.callCount }

// Fetch implements provider.Connector.
func (c *Connector) Fetch(ctx context.Context, countries []string, params provider.FetchParams) (*core.ProviderPayload, error) {
	c.callCount++

	if c.FetchFunc != nil {
		return c.FetchFunc(ctx, countries, params)
	}

	payload := &core.ProviderPayload{
		Source:    c.SourceName,
		Domain:    c.DataDomain,
		Timestamp: time.Now().UTC(),
		Countries: make([]core.CountryData, 0, len(countries)),
	}
	date := params.Period
	if date == "" {
		date = "2024-01-01"
	} else if len(date) == 4 {
		date += "-01-01"
	}

	for _, code := range countries {
		normalized := core.NormalizeCountryCode(code)
		data := core.CountryData{Code: normalized, Name: normalized}
		switch c.DataDomain {
		case core.DomainTrade:
			value := scaled(c.SourceName+normalized, 1e9)
			data.Trade = []core.RawTradeRecord{{
				CountryCode:   normalized,
				Date:          date,
				TradeValue:    &value,
				Currency:      "USD",
				CommodityCode: "HS001",
			}}
		case core.DomainMacroeconomic:
			gdp := scaled(c.SourceName+normalized+"gdp", 1e12)
			pop := scaled(c.SourceName+normalized+"pop", 1e9)
			data.Macro = []core.RawMacroRecord{{
				CountryCode: normalized,
				Date:        date,
				GDP:         &gdp,
				Population:  &pop,
			}}
		case core.DomainEnvironmental:
			epiScore := scaled(c.SourceName+normalized+"epi", 100)
			air := scaled(c.SourceName+normalized+"air", 100)
			water := scaled(c.SourceName+normalized+"water", 100)
			data.Environmental = []core.RawEnvironmentalRecord{{
				CountryCode:  normalized,
				Date:         date,
				EPIScore:     &epiScore,
				AirQuality:   &air,
				WaterQuality: &water,
			}}
		}
		payload.Countries = append(payload.Countries, data)
	}

	return payload, nil
}

// HealthCheck implements provider.Connector.
func (c *Connector) HealthCheck(ctx context.Context) provider.HealthStatus {
	if c.HealthFunc != nil {
		return c.HealthFunc(ctx)
	}
	return provider.HealthStatus{
		Source:    c.SourceName,
		Status:    provider.StatusOK,
		Timestamp: time.Now().UTC(),
	}
}

// scaled derives a stable value in (0, max) from the seed text.
func scaled(seed string, max float64) float64 {
	h := fnv.New32a()
	h.Write([]byte(seed))
	return float64(h.Sum32()%1_000_000)/1_000_000*max*0.99 + max*0.001
}
