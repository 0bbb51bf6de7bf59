package entity

import (
	"time"
)

// Provenance tells where the rates of a snapshot came from
type Provenance string

const (
	// ProvenanceLive marks rates fetched from the upstream API in this call
	ProvenanceLive Provenance = "live"
	// ProvenanceCached marks rates read back from the persisted snapshot
	ProvenanceCached Provenance = "cached"
	// ProvenanceFallback marks the built-in constant rate table
	ProvenanceFallback Provenance = "fallback"
)

// Reason explains why a snapshot is not live
type Reason string

const (
	ReasonNone              Reason = "none"
	ReasonMissingCredential Reason = "missing_credential"
	ReasonThrottled         Reason = "throttled"
	ReasonUnauthorized      Reason = "unauthorized"
	ReasonRateLimited       Reason = "rate_limited"
	ReasonUpstreamError     Reason = "upstream_error"
	ReasonTransport         Reason = "transport"
	ReasonMalformedResponse Reason = "malformed_response"
	ReasonUnknownBase       Reason = "unknown_base"
)

// RateSnapshot is a rate table expressed relative to Base, as fetched at FetchedAtEpochMs
type RateSnapshot struct {
	Base             string             `json:"base"`
	Date             string             `json:"date"`
	Rates            map[string]float64 `json:"rates"`
	FetchedAtEpochMs int64              `json:"timestamp"`
	Provenance       Provenance         `json:"provenance,omitempty"`
	Reason           Reason             `json:"reason,omitempty"`
}

// FetchedAt returns the fetch timestamp as a time.Time
func (s *RateSnapshot) FetchedAt() time.Time {
	return time.UnixMilli(s.FetchedAtEpochMs)
}

// IsLive reports whether the snapshot came straight from the upstream API
func (s *RateSnapshot) IsLive() bool {
	return s != nil && s.Provenance == ProvenanceLive
}

// Rebase returns a copy of the snapshot expressed relative to base.
// It returns false when base is not part of the table or has a non-positive rate.
func (s *RateSnapshot) Rebase(base string) (*RateSnapshot, bool) {
	if s == nil {
		return nil, false
	}

	rates, ok := RebaseRates(s.Base, s.Rates, base)
	if !ok {
		return nil, false
	}

	return &RateSnapshot{
		Base:             base,
		Date:             s.Date,
		Rates:            rates,
		FetchedAtEpochMs: s.FetchedAtEpochMs,
		Provenance:       s.Provenance,
		Reason:           s.Reason,
	}, true
}

// RebaseRates converts a table anchored to from into one anchored to to:
// newRate[C] = rates[C] / rates[to], newRate[to] = 1.
// The input map is never modified.
func RebaseRates(from string, rates map[string]float64, to string) (map[string]float64, bool) {
	pivot := 1.0
	if to != from {
		r, ok := rates[to]
		if !ok || r <= 0 {
			return nil, false
		}
		pivot = r
	}

	out := make(map[string]float64, len(rates)+1)
	for code, r := range rates {
		if r < 0 {
			continue
		}
		out[code] = r / pivot
	}
	out[to] = 1

	return out, true
}

// IsStale reports whether snapshot is missing or older than refreshInterval at now
func IsStale(snapshot *RateSnapshot, refreshInterval time.Duration, now time.Time) bool {
	if snapshot == nil || snapshot.FetchedAtEpochMs == 0 {
		return true
	}

	return now.Sub(snapshot.FetchedAt()) > refreshInterval
}
