package scenario

import "errors"

// Sentinel errors for scenario operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrRuleNotFound is returned when a rule lookup finds no match.
	ErrRuleNotFound = errors.New("scenario: rule not found")

	// ErrInvalidRule is returned when rule validation fails.
	ErrInvalidRule = errors.New("scenario: invalid rule")

	// ErrLookupFailed is returned when rules could not be fetched from the
	// configured source (remote service or local store).
	ErrLookupFailed = errors.New("scenario: rule lookup failed")

	// ErrUnauthorized is returned when the remote rule service rejects the
	// forwarded credential.
	ErrUnauthorized = errors.New("scenario: unauthorized")
)
