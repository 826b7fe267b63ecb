package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/poiesic/geoflow/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(timeout time.Duration) *Client {
	return NewClient("testsrc", timeout, 1000, 10)
}

func TestFetchPayload(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"source": "upstream-name",
			"timestamp": "2026-03-01T12:00:00Z",
			"countries": [
				{"code": "usa", "name": "United States",
				 "trade": [{"country_code": "usa", "date": "2026-01-15",
				            "trade_value": 1000.5, "commodity_code": "HS001"}]}
			]
		}`))
	}))
	defer srv.Close()

	query := url.Values{}
	query.Set("countries", "USA")
	query.Set("period", "2026-01")

	payload, err := FetchPayload(context.Background(), newTestClient(0),
		srv.URL+"/trade", query, "testsrc", core.DomainTrade)
	require.NoError(t, err)

	assert.Equal(t, "USA", gotQuery.Get("countries"))
	assert.Equal(t, "2026-01", gotQuery.Get("period"))

	// Source and domain are stamped by the connector, not the provider
	assert.Equal(t, "testsrc", payload.Source)
	assert.Equal(t, core.DomainTrade, payload.Domain)

	require.Len(t, payload.Countries, 1)
	assert.Equal(t, "USA", payload.Countries[0].Code, "country codes are normalized")
	require.Len(t, payload.Countries[0].Trade, 1)
	require.NotNil(t, payload.Countries[0].Trade[0].TradeValue)
	assert.Equal(t, 1000.5, *payload.Countries[0].Trade[0].TradeValue)
}

func TestFetchPayload_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := FetchPayload(context.Background(), newTestClient(0),
		srv.URL, url.Values{}, "testsrc", core.DomainTrade)
	require.Error(t, err)

	ce, ok := AsConnectorError(err)
	require.True(t, ok)
	assert.Equal(t, KindProvider, ce.Kind)
	assert.Equal(t, "testsrc", ce.Source)
	assert.Contains(t, ce.Error(), "quota exceeded")
}

func TestFetchPayload_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	_, err := FetchPayload(context.Background(), newTestClient(0),
		srv.URL, url.Values{}, "testsrc", core.DomainTrade)
	require.Error(t, err)

	ce, ok := AsConnectorError(err)
	require.True(t, ok)
	assert.Equal(t, KindDecode, ce.Kind)
}

func TestFetchPayload_EmptyCountries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"source": "x", "countries": []}`))
	}))
	defer srv.Close()

	_, err := FetchPayload(context.Background(), newTestClient(0),
		srv.URL, url.Values{}, "testsrc", core.DomainTrade)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEmptyPayload)

	ce, ok := AsConnectorError(err)
	require.True(t, ok)
	assert.Equal(t, KindDecode, ce.Kind)
}

func TestFetchPayload_MissingCountries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"source": "x"}`))
	}))
	defer srv.Close()

	_, err := FetchPayload(context.Background(), newTestClient(0),
		srv.URL, url.Values{}, "testsrc", core.DomainTrade)
	require.ErrorIs(t, err, ErrUnknownShape)
}

func TestFetchPayload_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := FetchPayload(context.Background(), newTestClient(20*time.Millisecond),
		srv.URL, url.Values{}, "testsrc", core.DomainTrade)
	require.Error(t, err)

	ce, ok := AsConnectorError(err)
	require.True(t, ok)
	assert.Equal(t, KindTimeout, ce.Kind)
}

func TestFetchPayload_Unreachable(t *testing.T) {
	_, err := FetchPayload(context.Background(), newTestClient(time.Second),
		"http://127.0.0.1:1", url.Values{}, "testsrc", core.DomainTrade)
	require.Error(t, err)

	ce, ok := AsConnectorError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, ce.Kind)
}

func TestProbeHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok", "timestamp": "2026-03-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	status := ProbeHealth(context.Background(), newTestClient(0), srv.URL, "testsrc")
	assert.Equal(t, StatusOK, status.Status)
	assert.Equal(t, "testsrc", status.Source)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), status.Timestamp)
	assert.Empty(t, status.Detail)
}

func TestProbeHealth_Down(t *testing.T) {
	status := ProbeHealth(context.Background(), newTestClient(time.Second),
		"http://127.0.0.1:1", "testsrc")
	assert.Equal(t, StatusDown, status.Status)
	assert.NotEmpty(t, status.Detail)
}

func TestNormalizePayload_StampsDefaults(t *testing.T) {
	payload := &core.ProviderPayload{
		Source:    "whatever-the-provider-claims",
		Countries: []core.CountryData{{Code: " fra "}},
	}

	err := NormalizePayload(payload, "testsrc", core.DomainEnvironmental)
	require.NoError(t, err)

	assert.Equal(t, "testsrc", payload.Source)
	assert.Equal(t, core.DomainEnvironmental, payload.Domain)
	assert.Equal(t, "FRA", payload.Countries[0].Code)
	assert.False(t, payload.Timestamp.IsZero())
}
