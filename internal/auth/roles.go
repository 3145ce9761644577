package auth

import "github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"

// RoleResolver deterministically maps an external subject id to its role
// set from static configuration. It never fails and is stable across
// restarts for an unchanged driver list.
type RoleResolver struct {
	drivers map[string]struct{}
}

// NewRoleResolver creates a resolver over the configured driver subject ids.
func NewRoleResolver(driverSubjects []string) *RoleResolver {
	drivers := make(map[string]struct{}, len(driverSubjects))
	for _, s := range driverSubjects {
		drivers[s] = struct{}{}
	}
	return &RoleResolver{drivers: drivers}
}

// Resolve returns {"driver"} for configured driver subjects and
// {"passenger"} for everyone else.
func (r *RoleResolver) Resolve(subjectID string) []string {
	if _, ok := r.drivers[subjectID]; ok {
		return []string{domain.RoleDriver}
	}
	return []string{domain.RolePassenger}
}
