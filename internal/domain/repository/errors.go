package repository

import "errors"

var (
	// ErrDataUnavailable marks a ticker without usable price history.
	ErrDataUnavailable = errors.New("market data unavailable")
	// ErrUniverseUnavailable is returned when every universe source failed.
	ErrUniverseUnavailable = errors.New("no universe source available")
	// ErrNotFound is returned by upstream sources for unknown symbols.
	ErrNotFound = errors.New("symbol not found")
)
