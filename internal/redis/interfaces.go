package redis

import (
	"context"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
)

// TripCache defines the trip snapshot cache operations.
type TripCache interface {
	GetTrip(ctx context.Context, tripID string) (*CachedTrip, error)
	SetTrip(ctx context.Context, trip *domain.Trip) error
	InvalidateTrip(ctx context.Context, tripID string) error
}

// TripLocations defines the live trip location operations.
type TripLocations interface {
	SetTripLocation(ctx context.Context, tripID, location string) error
	GetTripLocation(ctx context.Context, tripID string) (string, error)
	RemoveTripLocation(ctx context.Context, tripID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ TripCache     = (*CacheStore)(nil)
	_ TripLocations = (*LocationStore)(nil)
)
