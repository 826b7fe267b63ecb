package provider

import (
	"context"
	"time"

	"github.com/poiesic/geoflow/core"
)

// Health status values reported by HealthCheck.
const (
	StatusOK   = "ok"
	StatusDown = "down"
)

// FetchParams carries optional request parameters for a fetch.
type FetchParams struct {
	// Period is an optional time-period selector understood by the
	// provider, e.g. "2024" or "2024-01". Empty means provider default.
	Period string
}

// HealthStatus is the result of a connector liveness probe.
type HealthStatus struct {
	Source    string
	Status    string
	Timestamp time.Time
	Detail    string // populated when Status != StatusOK
}

// Connector fetches raw country-level data from one external provider.
// Implementations must be safe for concurrent use and must never panic
// across the Fetch boundary; all failures are returned as *ConnectorError.
type Connector interface {
	// Name returns the stable source identifier used to key batch results.
	Name() string

	// Domain returns the record schema this provider serves.
	Domain() core.Domain

	// Fetch retrieves raw records for the given country codes.
	// The returned error, if any, is always a *ConnectorError.
	Fetch(ctx context.Context, countries []string, params FetchParams) (*core.ProviderPayload, error)

	// HealthCheck probes provider liveness independently of Fetch.
	HealthCheck(ctx context.Context) HealthStatus
}
