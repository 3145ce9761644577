package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/auth"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/repository"
)

// TokenVerifier validates a raw token and extracts its identity claims.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*auth.Claims, error)
}

// RoleResolver maps an external subject id to its role set.
type RoleResolver interface {
	Resolve(subjectID string) []string
}

// SessionAuthenticator turns a raw bearer token into an authenticated
// session, provisioning a local identity the first time a subject is seen.
// Both the request-style surface and the realtime gateway go through it.
type SessionAuthenticator struct {
	verifier   TokenVerifier
	identities repository.IdentityRepository
	roles      RoleResolver
}

// NewSessionAuthenticator creates a new SessionAuthenticator.
func NewSessionAuthenticator(verifier TokenVerifier, identities repository.IdentityRepository, roles RoleResolver) *SessionAuthenticator {
	return &SessionAuthenticator{
		verifier:   verifier,
		identities: identities,
		roles:      roles,
	}
}

// Authenticate verifies the token and loads or provisions the identity.
// Roles are resolved once, at creation; an existing identity's roles are
// loaded as stored and never recomputed.
func (a *SessionAuthenticator) Authenticate(ctx context.Context, rawToken string) (*domain.Session, error) {
	claims, err := a.verifier.Verify(ctx, rawToken)
	if err != nil {
		if errors.Is(err, auth.ErrKeyFetch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	identity, err := a.findOrCreate(ctx, claims)
	if err != nil {
		return nil, err
	}

	return &domain.Session{
		ConnectionID: uuid.New().String(),
		Identity:     identity,
	}, nil
}

// findOrCreate is idempotent under concurrent first use of one subject:
// the store's uniqueness constraint arbitrates the race, and a losing
// create retries the lookup instead of surfacing a duplicate.
func (a *SessionAuthenticator) findOrCreate(ctx context.Context, claims *auth.Claims) (*domain.Identity, error) {
	identity, err := a.identities.GetBySubject(ctx, claims.SubjectID)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrSyncFailure, err)
	}

	now := time.Now()
	created := &domain.Identity{
		ID:        uuid.New().String(),
		SubjectID: claims.SubjectID,
		Email:     claims.Email,
		Roles:     a.roles.Resolve(claims.SubjectID),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = a.identities.Create(ctx, created)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("%w: %v", ErrSyncFailure, err)
	}

	// Lost the create race; the winner's row is authoritative.
	identity, err = a.identities.GetBySubject(ctx, claims.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyncFailure, err)
	}
	return identity, nil
}
