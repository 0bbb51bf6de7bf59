// Package api internal/infrastructure/api/exchangerates_api_client.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/damon-houk/fxconv/internal/domain/service"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
	"github.com/damon-houk/fxconv/internal/infrastructure/metrics"
)

const (
	// DefaultBaseURL is the exchangeratesapi.io v1 endpoint
	DefaultBaseURL = "https://api.exchangeratesapi.io/v1"
	// DefaultBackoff is the base wait between retries
	DefaultBackoff = 500 * time.Millisecond

	latestPath     = "/latest"
	timeseriesPath = "/timeseries"
	dateLayout     = "2006-01-02"
)

// ClientOptions configures an ExchangeRatesAPIClient
type ClientOptions struct {
	BaseURL    string
	AccessKey  string
	HTTPClient *http.Client
	MaxRetries int
	Backoff    time.Duration
	Logger     logger.Logger
}

// ExchangeRatesAPIClient implements the RateAPI interface for exchangeratesapi.io
type ExchangeRatesAPIClient struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

// NewExchangeRatesAPIClient creates a new exchange rate API client
func NewExchangeRatesAPIClient(opts ClientOptions) *ExchangeRatesAPIClient {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetDefaultLogger()
	}

	return &ExchangeRatesAPIClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		accessKey:  opts.AccessKey,
		httpClient: opts.HTTPClient,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		logger:     opts.Logger.WithField("component", "exchange_rates_api"),
	}
}

// Configured reports whether an access key is set
func (c *ExchangeRatesAPIClient) Configured() bool {
	return c.accessKey != ""
}

// Latest retrieves the newest rate table in the API's native base (EUR on free plans)
func (c *ExchangeRatesAPIClient) Latest(ctx context.Context) (*service.LatestRates, error) {
	body, err := c.get(ctx, "latest", latestPath, nil)
	if err != nil {
		return nil, err
	}

	if !gjson.GetBytes(body, "rates").IsObject() {
		return nil, &APIError{Kind: KindMalformed, Info: "response has no rates object"}
	}

	var latest service.LatestRates
	if err := json.Unmarshal(body, &latest); err != nil {
		return nil, &APIError{Kind: KindMalformed, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if latest.Base == "" {
		return nil, &APIError{Kind: KindMalformed, Info: "response has no base currency"}
	}

	return &latest, nil
}

// TimeSeries retrieves daily rates for symbols between start and end inclusive
func (c *ExchangeRatesAPIClient) TimeSeries(ctx context.Context, start, end time.Time, symbols []string) (*service.TimeSeries, error) {
	params := url.Values{}
	params.Set("start_date", start.Format(dateLayout))
	params.Set("end_date", end.Format(dateLayout))
	if len(symbols) > 0 {
		params.Set("symbols", strings.Join(symbols, ","))
	}

	body, err := c.get(ctx, "timeseries", timeseriesPath, params)
	if err != nil {
		return nil, err
	}

	if !gjson.GetBytes(body, "rates").IsObject() {
		return nil, &APIError{Kind: KindMalformed, Info: "response has no rates object"}
	}

	var series service.TimeSeries
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, &APIError{Kind: KindMalformed, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return &series, nil
}

// get performs a GET against path and returns the body of a successful response
func (c *ExchangeRatesAPIClient) get(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	if !c.Configured() {
		return nil, &APIError{Kind: KindMissingCredential, Info: "access key is not set"}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("access_key", c.accessKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	started := time.Now()

	// Execute request with retry logic
	var resp *http.Response
	var err error

retry:
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err = c.httpClient.Do(req)
		if err == nil {
			break
		}

		if attempt < c.maxRetries {
			// Wait with quadratic backoff before retrying
			wait := time.Duration(attempt*attempt) * c.backoff
			c.logger.Warn("Request failed, retrying", map[string]interface{}{
				"endpoint": endpoint,
				"attempt":  attempt,
				"retry_in": wait.String(),
				"error":    err.Error(),
			})

			select {
			case <-ctx.Done():
				err = ctx.Err()
				break retry
			case <-time.After(wait):
			}
		}
	}

	if err != nil {
		metrics.ObserveUpstream(endpoint, string(KindTransport), time.Since(started))
		return nil, &APIError{
			Kind: KindTransport,
			Err:  fmt.Errorf("failed to execute request after %d attempts: %w", c.maxRetries, err),
		}
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveUpstream(endpoint, string(KindTransport), time.Since(started))
		return nil, &APIError{Kind: KindTransport, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if apiErr := classifyResponse(resp.StatusCode, body); apiErr != nil {
		metrics.ObserveUpstream(endpoint, string(apiErr.Kind), time.Since(started))
		return nil, apiErr
	}

	c.logger.Debug("Exchange rate API response", map[string]interface{}{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"bytes":    len(body),
	})
	metrics.ObserveUpstream(endpoint, "ok", time.Since(started))

	return body, nil
}

// classifyResponse turns an error status, or a 200 body flagged
// "success": false, into an APIError
func classifyResponse(status int, body []byte) *APIError {
	info := gjson.GetBytes(body, "error.info").String()
	if info == "" {
		info = gjson.GetBytes(body, "error.message").String()
	}

	if status < 200 || status > 299 {
		return &APIError{Kind: kindForStatus(status), StatusCode: status, Info: info}
	}

	if success := gjson.GetBytes(body, "success"); success.Exists() && !success.Bool() {
		return &APIError{
			Kind:       kindForCode(gjson.GetBytes(body, "error.code").Int()),
			StatusCode: status,
			Info:       info,
		}
	}

	return nil
}

var _ service.RateAPI = (*ExchangeRatesAPIClient)(nil)
