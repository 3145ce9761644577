package auth

import "errors"

var (
	// ErrInvalidToken is returned when a token is malformed, carries an
	// unexpected algorithm or key id, fails signature verification, is
	// expired, or has issuer/audience/claim mismatches.
	ErrInvalidToken = errors.New("invalid token")

	// ErrKeyFetch is returned when the signing key set cannot be fetched
	// from the provider. Distinct from ErrInvalidToken so the boundary can
	// report upstream unavailability instead of rejecting the caller.
	ErrKeyFetch = errors.New("signing key fetch failed")

	// ErrUnknownKey is returned when a token's key id is absent from the
	// key set even after a fresh fetch.
	ErrUnknownKey = errors.New("unknown signing key id")
)
