package provider

import (
	"context"
	"net/url"
	"time"

	"github.com/poiesic/geoflow/core"
)

// healthResponse is the liveness envelope every provider exposes.
type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// FetchPayload performs the common fetch flow for connectors implementing
// the standard payload contract: GET endpoint with country/period query
// parameters, decode the payload envelope, and normalize it.
func FetchPayload(ctx context.Context, client *Client, endpoint string, query url.Values, source string, domain core.Domain) (*core.ProviderPayload, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, NewConnectorError(source, KindNetwork, err)
	}
	u.RawQuery = query.Encode()

	var payload core.ProviderPayload
	if err := client.GetJSON(ctx, u.String(), &payload); err != nil {
		return nil, err
	}
	if err := NormalizePayload(&payload, source, domain); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ProbeHealth performs the common health-check flow. It never returns an
// error; failures are reported through the status value.
func ProbeHealth(ctx context.Context, client *Client, endpoint string, source string) HealthStatus {
	var resp healthResponse
	if err := client.GetJSON(ctx, endpoint, &resp); err != nil {
		return HealthStatus{
			Source:    source,
			Status:    StatusDown,
			Timestamp: time.Now().UTC(),
			Detail:    err.Error(),
		}
	}
	status := resp.Status
	if status == "" {
		status = StatusOK
	}
	ts := resp.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return HealthStatus{Source: source, Status: status, Timestamp: ts}
}
