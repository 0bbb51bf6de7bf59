package service

import "errors"

var (
	// ErrInvalidCurrency is returned for codes that are not 3 upper-case letters
	ErrInvalidCurrency = errors.New("currency code must be 3 upper-case letters")
	// ErrInvalidAmount is returned for NaN or infinite amounts
	ErrInvalidAmount = errors.New("amount must be a finite number")
	// ErrInvalidPeriod is returned for history requests outside 1..365 days
	ErrInvalidPeriod = errors.New("days must be between 1 and 365")
	// ErrNoRates is returned when no rate table has been loaded yet
	ErrNoRates = errors.New("no exchange rates available")
	// ErrWatcherStopped is returned by a stopped RateWatcher
	ErrWatcherStopped = errors.New("rate watcher is stopped")
)
