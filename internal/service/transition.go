package service

import "github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"

// checkTransition enforces the trip status transition rules. It is pure
// logic over the actor's roles and the requested target:
//
//   - only a "driver" may drive any transition;
//   - REQUESTED is reachable only through trip creation, never an update;
//   - every transition must carry a non-empty location.
//
// No ordering guard beyond the REQUESTED rule is applied: a trip already
// IN_PROGRESS may be set back to ACCEPTED. The last successful update wins.
func checkTransition(actor *domain.Identity, target domain.TripStatus, location string) error {
	if !actor.HasRole(domain.RoleDriver) {
		return ErrForbidden
	}
	if !domain.ValidUpdateStatus(target) {
		return ErrInvalidTargetState
	}
	if location == "" {
		return ErrMissingLocation
	}
	return nil
}
