package handler

import (
	"time"

	"github.com/damon-houk/fxconv/internal/domain/entity"
)

// CurrenciesResponse lists the supported currencies and history periods
type CurrenciesResponse struct {
	Currencies []entity.Currency `json:"currencies"`
	Periods    []int             `json:"periods"`
}

// RatesResponse represents the current rate table of the watcher
type RatesResponse struct {
	Base        string             `json:"base"`
	Date        string             `json:"date"`
	Rates       map[string]float64 `json:"rates"`
	Timestamp   int64              `json:"timestamp"`
	Provenance  entity.Provenance  `json:"provenance"`
	Reason      entity.Reason      `json:"reason"`
	State       string             `json:"state"`
	Stale       bool               `json:"stale"`
	LastUpdated string             `json:"last_updated,omitempty"`
}

// ConvertQuery holds the currency parameters of a conversion request
type ConvertQuery struct {
	From string   `validate:"required,len=3,alpha,uppercase"`
	To   []string `validate:"required,min=1,dive,len=3,alpha,uppercase"`
}

// ConversionResultResponse is one converted amount. ConvertedAmount and
// EffectiveRate are null when no rate was available.
type ConversionResultResponse struct {
	ToCurrency      string   `json:"to_currency"`
	ConvertedAmount *float64 `json:"converted_amount"`
	EffectiveRate   *float64 `json:"effective_rate"`
	Formatted       string   `json:"formatted"`
	Error           string   `json:"error,omitempty"`
}

// ConversionResponse represents the response for the conversion endpoint
type ConversionResponse struct {
	FromCurrency string                     `json:"from_currency"`
	Amount       float64                    `json:"amount"`
	AsOfDate     string                     `json:"as_of_date"`
	Results      []ConversionResultResponse `json:"results"`
}

// UpdateLastUsedRequest represents the request body for the last-used endpoint
type UpdateLastUsedRequest struct {
	From string   `json:"from" validate:"required,len=3,alpha,uppercase"`
	To   []string `json:"to" validate:"dive,len=3,alpha,uppercase"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
