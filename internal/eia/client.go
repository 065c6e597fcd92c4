// Package eia wraps the EIA Open Data v2 API for natural gas
// consumption series.
package eia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/wonny/fueltracker/internal/panel"
	"github.com/wonny/fueltracker/pkg/config"
	"github.com/wonny/fueltracker/pkg/httputil"
	"github.com/wonny/fueltracker/pkg/logger"
)

// Client handles communication with the EIA Open Data v2 API
// ⭐ SSOT: EIA API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
	endpoints  config.Endpoints
}

// NewClient creates a new EIA client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.EIAConfig, endpoints config.Endpoints) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		endpoints:  endpoints,
	}
}

// apiResponse mirrors the envelope of an EIA v2 data response.
type apiResponse struct {
	Response struct {
		Total json.Number              `json:"total"`
		Data  []map[string]interface{} `json:"data"`
	} `json:"response"`
	Error string `json:"error"`
}

// FetchResult carries both the raw payload (for caching) and the
// normalized rows.
type FetchResult struct {
	Payload []byte
	Rows    []panel.RawRow
}

// Fetch retrieves the named series and normalizes the response rows.
// ⭐ SSOT: 시리즈 데이터 수집은 이 함수에서만
func (c *Client) Fetch(ctx context.Context, series string) (*FetchResult, error) {
	endpoint, ok := c.endpoints.Lookup(series)
	if !ok {
		return nil, fmt.Errorf("unknown series %q in endpoints file", series)
	}

	reqURL, err := c.buildURL(endpoint)
	if err != nil {
		return nil, fmt.Errorf("build request URL: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("API error: %s", parsed.Error)
	}

	rows := make([]panel.RawRow, 0, len(parsed.Response.Data))
	for _, d := range parsed.Response.Data {
		rows = append(rows, panel.RawRow(d))
	}

	c.logger.WithFields(map[string]interface{}{
		"series": series,
		"rows":   len(rows),
		"total":  parsed.Response.Total.String(),
	}).Debug("Fetched series data")

	return &FetchResult{Payload: body, Rows: rows}, nil
}

// buildURL composes the endpoint path and query parameters. The API key
// is attached last so endpoint params cannot override it.
func (c *Client) buildURL(endpoint config.Endpoint) (string, error) {
	u, err := url.Parse(c.baseURL + "/" + strings.TrimLeft(endpoint.Path, "/"))
	if err != nil {
		return "", err
	}

	q := u.Query()
	for k, v := range endpoint.Params {
		q.Set(k, v)
	}
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
