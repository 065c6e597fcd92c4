package eia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fueltracker/pkg/config"
	"github.com/wonny/fueltracker/pkg/httputil"
	"github.com/wonny/fueltracker/pkg/logger"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()

	cfg := config.EIAConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Timeout: 5 * time.Second,
	}
	endpoints := config.Endpoints{
		"compressor_fuel": {
			Path:   "natural-gas/cons/sum/data",
			Params: map[string]string{"frequency": "monthly"},
		},
	}

	httpClient := httputil.New(logger.NewNop(), cfg.Timeout)
	return NewClient(httpClient, logger.NewNop(), cfg, endpoints)
}

func TestFetchParsesResponse(t *testing.T) {
	var gotPath, gotKey, gotFreq string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		gotFreq = r.URL.Query().Get("frequency")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"response": {
				"total": "2",
				"data": [
					{"period": "2023-01", "value": 115.2, "duoarea": "NUS"},
					{"period": "2023-02", "value": 108.9, "duoarea": "NUS"}
				]
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, err := client.Fetch(context.Background(), "compressor_fuel")
	require.NoError(t, err)

	assert.Equal(t, "/natural-gas/cons/sum/data", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "monthly", gotFreq)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "2023-01", result.Rows[0]["period"])
	assert.Equal(t, 115.2, result.Rows[0]["value"])
	assert.NotEmpty(t, result.Payload)
}

func TestFetchUnknownSeries(t *testing.T) {
	client := newTestClient(t, "http://unused")

	_, err := client.Fetch(context.Background(), "wellhead_price")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wellhead_price")
}

func TestFetchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Fetch(context.Background(), "compressor_fuel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestFetchNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Fetch(context.Background(), "compressor_fuel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFetchMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Fetch(context.Background(), "compressor_fuel")
	require.Error(t, err)
}
