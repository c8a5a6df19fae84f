package core

import "errors"

var (
	// ErrInvalidDomainInput is returned when a domain is empty or cannot be used as a key
	ErrInvalidDomainInput = errors.New("invalid domain input")

	// ErrNoKeywordData is returned when the merge step receives no keyword rows at all
	ErrNoKeywordData = errors.New("no keyword data")

	// ErrProviderUnavailable is returned when a data provider call fails or times out
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrMalformedProviderResponse is returned when a provider response fails validation
	ErrMalformedProviderResponse = errors.New("malformed provider response")

	// ErrAllStrategiesExhausted is returned when every strategy failed or returned nothing
	ErrAllStrategiesExhausted = errors.New("all gap strategies exhausted")
)
