package tariff

import "errors"

var (
	// ErrTariffNotFound is returned when no tariff matches a code.
	ErrTariffNotFound = errors.New("tariff: not found")
	// ErrUnknownProvider is returned for an unrecognized provider name.
	ErrUnknownProvider = errors.New("tariff: unknown provider")
)
