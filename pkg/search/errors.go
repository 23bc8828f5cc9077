package search

import "errors"

var (
	// ErrAuthentication is returned when search credentials are missing or rejected.
	ErrAuthentication = errors.New("search authentication failed")
	// ErrQuotaExceeded is returned when the provider rejects a request for rate or quota reasons.
	ErrQuotaExceeded = errors.New("search quota exceeded")
	// ErrEmptyQuery is returned for blank queries.
	ErrEmptyQuery = errors.New("search query is empty")
)
