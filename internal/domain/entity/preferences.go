package entity

import (
	"errors"
	"slices"
)

// LastUsedCurrencies remembers the most recent conversion selection
type LastUsedCurrencies struct {
	From string   `json:"from"`
	To   []string `json:"to"`
}

// UserPreferences holds the user settings persisted between sessions
type UserPreferences struct {
	DarkMode           bool               `json:"darkMode"`
	FavoriteCurrencies []string           `json:"favoriteCurrencies"`
	LastUsedCurrencies LastUsedCurrencies `json:"lastUsedCurrencies"`
	IsReversed         bool               `json:"isReversed"`
}

// DefaultPreferences returns the preferences used on first load
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		DarkMode:           false,
		FavoriteCurrencies: []string{},
		LastUsedCurrencies: LastUsedCurrencies{
			From: "USD",
			To:   []string{"EUR", "GBP", "JPY"},
		},
		IsReversed: false,
	}
}

// Clone returns a deep copy
func (p *UserPreferences) Clone() *UserPreferences {
	return &UserPreferences{
		DarkMode:           p.DarkMode,
		FavoriteCurrencies: append([]string{}, p.FavoriteCurrencies...),
		LastUsedCurrencies: LastUsedCurrencies{
			From: p.LastUsedCurrencies.From,
			To:   append([]string{}, p.LastUsedCurrencies.To...),
		},
		IsReversed: p.IsReversed,
	}
}

// IsFavorite reports whether code is in the favorites set
func (p *UserPreferences) IsFavorite(code string) bool {
	return slices.Contains(p.FavoriteCurrencies, code)
}

// SameLastUsed reports whether from/to equal the stored last-used selection
func (p *UserPreferences) SameLastUsed(from string, to []string) bool {
	return p.LastUsedCurrencies.From == from && slices.Equal(p.LastUsedCurrencies.To, to)
}

// Validate ensures every stored currency code is well formed
func (p *UserPreferences) Validate() error {
	for _, code := range p.FavoriteCurrencies {
		if !IsCurrencyCode(code) {
			return errors.New("favorite currencies must be 3-letter upper-case codes")
		}
	}

	if !IsCurrencyCode(p.LastUsedCurrencies.From) {
		return errors.New("last used source currency must be a 3-letter upper-case code")
	}

	for _, code := range p.LastUsedCurrencies.To {
		if !IsCurrencyCode(code) {
			return errors.New("last used target currencies must be 3-letter upper-case codes")
		}
	}

	return nil
}
