// Package service internal/application/service/conversion_service.go
package service

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/damon-houk/fxconv/internal/domain/entity"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
	"github.com/damon-houk/fxconv/internal/infrastructure/middleware"
)

// SnapshotSource supplies the rate table conversions are computed against
type SnapshotSource interface {
	Snapshot() *entity.RateSnapshot
}

// SnapshotFunc adapts a function to SnapshotSource
type SnapshotFunc func() *entity.RateSnapshot

// Snapshot calls f
func (f SnapshotFunc) Snapshot() *entity.RateSnapshot {
	return f()
}

// ConversionService converts amounts with the current rate table
type ConversionService struct {
	rates  SnapshotSource
	logger logger.Logger
}

// NewConversionService creates a new conversion service
func NewConversionService(rates SnapshotSource, log logger.Logger) *ConversionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionService{
		rates:  rates,
		logger: log,
	}
}

// Convert converts amount from one currency into each of to. A target without
// a rate yields a result whose Valid method reports false.
func (s *ConversionService) Convert(ctx context.Context, amount float64, from string, to []string) ([]entity.ConversionResult, error) {
	requestID := middleware.GetRequestID(ctx)

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}

	if !entity.IsCurrencyCode(from) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, from)
	}

	if len(to) == 0 {
		return nil, fmt.Errorf("%w: no target currency", ErrInvalidCurrency)
	}

	for _, code := range to {
		if !entity.IsCurrencyCode(code) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
		}
	}

	snapshot := s.rates.Snapshot()
	if snapshot == nil {
		s.logger.Warn("Conversion requested before rates were loaded", map[string]interface{}{
			"request_id": requestID,
		})
		return nil, ErrNoRates
	}

	results := make([]entity.ConversionResult, 0, len(to))
	for _, code := range to {
		converted, rate := entity.Convert(amount, from, code, snapshot.Rates)

		result := entity.ConversionResult{
			FromCurrency:    from,
			ToCurrency:      code,
			Amount:          amount,
			ConvertedAmount: converted,
			EffectiveRate:   rate,
			AsOfDate:        snapshot.Date,
		}

		if !result.Valid() {
			s.logger.Warn("No rate available for conversion", map[string]interface{}{
				"request_id": requestID,
				"from":       from,
				"to":         code,
				"base":       snapshot.Base,
			})
		}

		results = append(results, result)
	}

	s.logger.Debug("Conversion completed", map[string]interface{}{
		"request_id": requestID,
		"amount":     amount,
		"from":       from,
		"targets":    len(results),
		"provenance": snapshot.Provenance,
	})

	return results, nil
}

// amountPrinter groups thousands the English way, e.g. 1,234.50
var amountPrinter = message.NewPrinter(language.English)

// decimalPlaces returns how many minor digits code is displayed with
func decimalPlaces(code string) int32 {
	if code == "JPY" {
		return 0
	}
	return 2
}

// FormatAmount renders amount for display in code, e.g. "1,234.50 USD".
// NaN and infinite amounts render as "N/A".
func FormatAmount(amount float64, code string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "N/A"
	}

	places := decimalPlaces(code)
	rounded := decimal.NewFromFloat(amount).Round(places).InexactFloat64()

	return amountPrinter.Sprintf(fmt.Sprintf("%%.%df %%s", places), rounded, code)
}
