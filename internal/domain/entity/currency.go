package entity

// Currency describes a supported currency
type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Currencies is the catalogue offered to the presentation layer
var Currencies = []Currency{
	{Code: "PKR", Name: "Pakistani Rupee", Symbol: "₨"},
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "GBP", Name: "British Pound", Symbol: "£"},
	{Code: "AED", Name: "UAE Dirham", Symbol: "د.إ"},
	{Code: "SAR", Name: "Saudi Riyal", Symbol: "﷼"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$"},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥"},
}

// HistoricalPeriods are the day ranges offered for rate history
var HistoricalPeriods = []int{7, 30, 365}

// IsCurrencyCode reports whether code looks like an ISO 4217 code
func IsCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// FallbackRates returns the built-in rate table used when no live or cached
// rates are available. It is expressed relative to PKR.
func FallbackRates() *RateSnapshot {
	return &RateSnapshot{
		Base: "PKR",
		Rates: map[string]float64{
			"PKR": 1,
			"USD": 0.0036,
			"EUR": 0.0033,
			"GBP": 0.0028,
			"AED": 0.0132,
			"SAR": 0.0135,
			"CAD": 0.0049,
			"AUD": 0.0054,
			"JPY": 0.5400,
			"CNY": 0.0260,
		},
		Provenance: ProvenanceFallback,
	}
}
