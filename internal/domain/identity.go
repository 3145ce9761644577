package domain

import "time"

// Roles assigned by the role resolver. No other role ever appears.
const (
	RoleDriver    = "driver"
	RolePassenger = "passenger"
)

// Identity is the local user record for an externally-authenticated subject.
// It is created exactly once per distinct subject id ("sync on first sight");
// SubjectID is immutable and unique, and Roles are computed once at creation
// and never recomputed afterwards.
type Identity struct {
	ID        string
	SubjectID string
	Email     string
	Roles     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRole reports whether the identity holds the given role.
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Session is the connection-scoped authenticated identity. It is never
// persisted; it lives for the duration of one request or one persistent
// connection and is discarded on disconnect.
type Session struct {
	ConnectionID string
	Identity     *Identity
}
