package weather

import "errors"

// Sentinel errors for weather operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrFetchFailed is returned when the upstream request could not be
	// performed or returned a non-success status.
	ErrFetchFailed = errors.New("weather: fetch failed")

	// ErrMalformedResponse is returned when the upstream payload could not
	// be decoded into a snapshot.
	ErrMalformedResponse = errors.New("weather: malformed response")

	// ErrUnauthorized is returned when the upstream rejects the credential.
	ErrUnauthorized = errors.New("weather: unauthorized")
)
