// internal/infrastructure/api/exchangerates_api_client_test.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/fxconv/internal/domain/entity"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
)

func newTestClient(baseURL, key string) *ExchangeRatesAPIClient {
	return NewExchangeRatesAPIClient(ClientOptions{
		BaseURL:   baseURL,
		AccessKey: key,
		Logger:    logger.NewJSONLogger(nil, logger.ErrorLevel),
	})
}

func TestLatest(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("access_key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"timestamp": 1714557600,
			"base": "EUR",
			"date": "2024-05-01",
			"rates": {"USD": 1.1, "GBP": 0.85, "PKR": 298.5}
		}`))
	}))
	defer mockServer.Close()

	client := newTestClient(mockServer.URL, "secret")
	latest, err := client.Latest(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "EUR", latest.Base)
	assert.Equal(t, "2024-05-01", latest.Date)
	assert.Equal(t, 1.1, latest.Rates["USD"])
	assert.Len(t, latest.Rates, 3)
}

func TestLatestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   ErrorKind
		info   string
	}{
		{
			name:   "Invalid credential",
			status: http.StatusUnauthorized,
			body:   `{"error": {"code": "invalid_access_key", "info": "You have not supplied a valid API Access Key."}}`,
			kind:   KindUnauthorized,
			info:   "You have not supplied a valid API Access Key.",
		},
		{
			name:   "Rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error": {"info": "Too many requests"}}`,
			kind:   KindRateLimited,
			info:   "Too many requests",
		},
		{
			name:   "Server error",
			status: http.StatusInternalServerError,
			body:   `oops`,
			kind:   KindUpstream,
		},
		{
			name:   "Error flagged in a 200 body",
			status: http.StatusOK,
			body:   `{"success": false, "error": {"code": 104, "info": "Monthly usage limit reached"}}`,
			kind:   KindRateLimited,
			info:   "Monthly usage limit reached",
		},
		{
			name:   "Missing rates",
			status: http.StatusOK,
			body:   `{"base": "EUR", "date": "2024-05-01"}`,
			kind:   KindMalformed,
		},
		{
			name:   "Rates of the wrong type",
			status: http.StatusOK,
			body:   `{"base": "EUR", "rates": {"USD": "1.1"}}`,
			kind:   KindMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer mockServer.Close()

			client := newTestClient(mockServer.URL, "secret")
			latest, err := client.Latest(context.Background())

			assert.Nil(t, latest)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.kind, KindOf(err))
			if tt.info != "" {
				assert.Equal(t, tt.info, apiErr.Info)
			}
		})
	}
}

func TestMissingCredentialMakesNoRequest(t *testing.T) {
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer mockServer.Close()

	client := newTestClient(mockServer.URL, "")
	assert.False(t, client.Configured())

	_, err := client.Latest(context.Background())
	assert.Equal(t, KindMissingCredential, KindOf(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestTransportFailure(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := mockServer.URL
	mockServer.Close()

	client := NewExchangeRatesAPIClient(ClientOptions{
		BaseURL:    baseURL,
		AccessKey:  "secret",
		MaxRetries: 2,
		Backoff:    time.Millisecond,
		Logger:     logger.NewJSONLogger(nil, logger.ErrorLevel),
	})

	_, err := client.Latest(context.Background())
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestTimeSeries(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/timeseries", r.URL.Path)
		assert.Equal(t, "2024-04-24", q.Get("start_date"))
		assert.Equal(t, "2024-05-01", q.Get("end_date"))
		assert.Equal(t, "GBP,USD", q.Get("symbols"))
		assert.Equal(t, "secret", q.Get("access_key"))

		w.Write([]byte(`{
			"success": true,
			"timeseries": true,
			"base": "EUR",
			"rates": {
				"2024-04-30": {"GBP": 0.85, "USD": 1.07},
				"2024-05-01": {"GBP": 0.86, "USD": 1.08}
			}
		}`))
	}))
	defer mockServer.Close()

	client := newTestClient(mockServer.URL, "secret")
	end := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	series, err := client.TimeSeries(context.Background(), end.AddDate(0, 0, -7), end, []string{"GBP", "USD"})

	require.NoError(t, err)
	assert.Len(t, series.Rates, 2)
	assert.Equal(t, 1.08, series.Rates["2024-05-01"]["USD"])
}

func TestReasonFor(t *testing.T) {
	assert.Equal(t, entity.ReasonUnauthorized, ReasonFor(&APIError{Kind: KindUnauthorized}))
	assert.Equal(t, entity.ReasonRateLimited, ReasonFor(fmt.Errorf("wrapped: %w", &APIError{Kind: KindRateLimited})))
	assert.Equal(t, entity.ReasonUpstreamError, ReasonFor(&APIError{Kind: KindUpstream, StatusCode: 500}))
	assert.Equal(t, entity.ReasonMalformedResponse, ReasonFor(&APIError{Kind: KindMalformed}))
	assert.Equal(t, entity.ReasonMissingCredential, ReasonFor(&APIError{Kind: KindMissingCredential}))
	assert.Equal(t, entity.ReasonTransport, ReasonFor(errors.New("connection reset")))
}
