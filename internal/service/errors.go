package service

import "errors"

var (
	// ErrUnauthenticated is returned when a token is missing or fails
	// verification.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrSyncFailure is returned when first-sight identity provisioning
	// fails irrecoverably.
	ErrSyncFailure = errors.New("identity sync failed")

	// ErrForbidden is returned when the actor's roles do not permit the
	// requested action.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTripID is returned when a trip id is not a well-formed UUID.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidDestination is returned when a destination is empty or
	// over length.
	ErrInvalidDestination = errors.New("invalid destination")

	// ErrInvalidTargetState is returned when an update targets REQUESTED
	// or an unknown status.
	ErrInvalidTargetState = errors.New("invalid target state")

	// ErrMissingLocation is returned when a status transition carries no
	// location.
	ErrMissingLocation = errors.New("missing location")
)
