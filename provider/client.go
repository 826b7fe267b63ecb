package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/poiesic/geoflow/core"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single provider request.
	DefaultTimeout = 30 * time.Second

	// defaultRPS is the per-connector request rate when none is configured.
	defaultRPS = 5

	maxResponseBytes = 32 << 20 // 32 MiB
)

// Client is the rate-limited HTTP JSON client shared by the concrete
// connectors. Each connector owns its own Client; limits are never shared.
type Client struct {
	source  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a client for the named source. rps <= 0 selects the
// default rate; burst < 1 is raised to 1; timeout <= 0 selects DefaultTimeout.
func NewClient(source string, timeout time.Duration, rps float64, burst int) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if rps <= 0 {
		rps = defaultRPS
	}
	if burst < 1 {
		burst = 1
	}
	return &Client{
		source:  source,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  slog.Default().With("connector", source),
	}
}

// GetJSON performs a rate-limited GET and decodes the JSON body into out.
// All failures are returned as *ConnectorError.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return NewConnectorError(c.source, KindTimeout, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewConnectorError(c.source, KindNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return NewConnectorError(c.source, classifyTransport(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the error message; providers
		// frequently return structured errors as plain text.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewConnectorError(c.source, KindProvider,
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	if err := decoder.Decode(out); err != nil {
		c.logger.Debug("response decode failed", "url", url, "err", err)
		return NewConnectorError(c.source, KindDecode, err)
	}
	return nil
}

// classifyTransport maps a transport error to an ErrorKind.
func classifyTransport(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}

// NormalizePayload enforces the payload contract on a decoded response:
// a non-empty countries list with normalized country codes. The domain and
// source are stamped by the connector, overriding whatever the provider
// claims, so downstream keying is stable.
func NormalizePayload(payload *core.ProviderPayload, source string, domain core.Domain) error {
	if payload == nil || payload.Countries == nil {
		return NewConnectorError(source, KindDecode, ErrUnknownShape)
	}
	if len(payload.Countries) == 0 {
		return NewConnectorError(source, KindDecode, ErrEmptyPayload)
	}
	payload.Source = source
	payload.Domain = domain
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now().UTC()
	}
	for i := range payload.Countries {
		payload.Countries[i].Code = core.NormalizeCountryCode(payload.Countries[i].Code)
	}
	return nil
}
