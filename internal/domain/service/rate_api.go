package service

import (
	"context"
	"time"
)

// LatestRates is the payload of the upstream latest-rates endpoint
type LatestRates struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// TimeSeries is the payload of the upstream timeseries endpoint, keyed by date
type TimeSeries struct {
	Base  string                        `json:"base"`
	Rates map[string]map[string]float64 `json:"rates"`
}

// RateAPI defines the interface for the upstream exchange rate API
type RateAPI interface {
	// Configured reports whether an access credential is available
	Configured() bool

	// Latest retrieves the newest rate table in the API's native base
	Latest(ctx context.Context) (*LatestRates, error)

	// TimeSeries retrieves daily rates for symbols between start and end inclusive
	TimeSeries(ctx context.Context, start, end time.Time, symbols []string) (*TimeSeries, error)
}
