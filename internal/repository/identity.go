package repository

import (
	"context"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
)

// IdentityRepository defines the persistence operations for identities.
//
// The subject id carries a uniqueness constraint; Create returns
// ErrDuplicate when it is violated, which is the authoritative arbiter of
// concurrent first-use provisioning races.
type IdentityRepository interface {
	// Create persists a new identity.
	Create(ctx context.Context, identity *domain.Identity) error

	// GetByID retrieves an identity by local id.
	GetByID(ctx context.Context, id string) (*domain.Identity, error)

	// GetBySubject retrieves an identity by external subject id.
	GetBySubject(ctx context.Context, subjectID string) (*domain.Identity, error)
}
