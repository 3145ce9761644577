package repository

import (
	"context"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID with its rider identity embedded.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// ListRequested retrieves trips still in REQUESTED status, newest
	// first, with rider identities embedded.
	ListRequested(ctx context.Context) ([]*domain.Trip, error)

	// UpdateStatusLocation sets status and current location in a single
	// atomic write and returns the post-update trip with rider embedded.
	UpdateStatusLocation(ctx context.Context, id string, status domain.TripStatus, location string) (*domain.Trip, error)
}
