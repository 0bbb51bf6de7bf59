package entity

import (
	"math"
)

// ConversionResult is the outcome of converting Amount from one currency to another
type ConversionResult struct {
	FromCurrency    string  `json:"from_currency"`
	ToCurrency      string  `json:"to_currency"`
	Amount          float64 `json:"amount"`
	ConvertedAmount float64 `json:"converted_amount"`
	EffectiveRate   float64 `json:"effective_rate"`
	AsOfDate        string  `json:"as_of_date"`
}

// Valid reports whether both legs of the conversion had a rate
func (r ConversionResult) Valid() bool {
	return !math.IsNaN(r.ConvertedAmount) && !math.IsNaN(r.EffectiveRate)
}

// Convert converts amount from one currency to another using rates that share
// an implicit base. A missing or non-positive leg yields NaN for both values.
func Convert(amount float64, from, to string, rates map[string]float64) (converted float64, rate float64) {
	if from == to {
		return amount, 1
	}

	fromRate, okFrom := rates[from]
	toRate, okTo := rates[to]
	if !okFrom || !okTo || fromRate <= 0 || toRate <= 0 {
		return math.NaN(), math.NaN()
	}

	rate = toRate / fromRate
	return amount * rate, rate
}
