package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
	internalRedis "github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/redis"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/repository"
)

const maxDestinationLength = 200

// TripService handles trip operations: creation by riders, listing for
// drivers, and role-gated status transitions.
type TripService struct {
	trips     repository.TripRepository
	cache     internalRedis.TripCache
	locations internalRedis.TripLocations
}

// NewTripService creates a new TripService. cache and locations are
// best-effort side stores and may be nil in tests.
func NewTripService(trips repository.TripRepository, cache internalRedis.TripCache, locations internalRedis.TripLocations) *TripService {
	return &TripService{
		trips:     trips,
		cache:     cache,
		locations: locations,
	}
}

// CreateTripRequest contains the parameters for requesting a trip.
type CreateTripRequest struct {
	Destination string
}

// Create creates a trip in REQUESTED state for the session's identity.
// Only non-driver actors may create trips.
func (s *TripService) Create(ctx context.Context, session *domain.Session, req CreateTripRequest) (*domain.Trip, error) {
	destination := strings.TrimSpace(req.Destination)
	if destination == "" || len(destination) > maxDestinationLength {
		return nil, ErrInvalidDestination
	}

	if session.Identity.HasRole(domain.RoleDriver) {
		return nil, ErrForbidden
	}

	now := time.Now()
	trip := &domain.Trip{
		ID:          uuid.New().String(),
		RiderID:     session.Identity.ID,
		Destination: destination,
		Status:      domain.TripStatusRequested,
		CreatedAt:   now,
		UpdatedAt:   now,
		Rider:       session.Identity,
	}

	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetTrip(ctx, trip); err != nil {
			log.Printf("trip cache set failed for %s: %v", trip.ID, err)
		}
	}

	return trip, nil
}

// ListActive returns all trips still in REQUESTED status with rider
// identities embedded. Restricted to drivers.
func (s *TripService) ListActive(ctx context.Context, session *domain.Session) ([]*domain.Trip, error) {
	if !session.Identity.HasRole(domain.RoleDriver) {
		return nil, ErrForbidden
	}
	return s.trips.ListRequested(ctx)
}

// Get retrieves a trip by id with its rider embedded.
func (s *TripService) Get(ctx context.Context, tripID string) (*domain.Trip, error) {
	if _, err := uuid.Parse(tripID); err != nil {
		return nil, ErrInvalidTripID
	}
	return s.trips.GetByID(ctx, tripID)
}

// Exists checks that a trip exists, consulting the snapshot cache before
// the database. Returns repository.ErrNotFound when it does not.
func (s *TripService) Exists(ctx context.Context, tripID string) error {
	if _, err := uuid.Parse(tripID); err != nil {
		return ErrInvalidTripID
	}

	if s.cache != nil {
		cached, err := s.cache.GetTrip(ctx, tripID)
		if err != nil {
			log.Printf("trip cache read failed for %s: %v", tripID, err)
		} else if cached != nil {
			return nil
		}
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.SetTrip(ctx, trip); err != nil {
			log.Printf("trip cache set failed for %s: %v", tripID, err)
		}
	}
	return nil
}

// UpdateStatusRequest contains the parameters for a status transition.
type UpdateStatusRequest struct {
	TripID   string
	Status   domain.TripStatus
	Location string
}

// UpdateStatus applies a role-gated status transition. Status and location
// are persisted in a single atomic write; the returned trip is the
// post-update row with its rider embedded.
func (s *TripService) UpdateStatus(ctx context.Context, session *domain.Session, req UpdateStatusRequest) (*domain.Trip, error) {
	if _, err := uuid.Parse(req.TripID); err != nil {
		return nil, ErrInvalidTripID
	}

	if err := checkTransition(session.Identity, req.Status, req.Location); err != nil {
		return nil, err
	}

	trip, err := s.trips.UpdateStatusLocation(ctx, req.TripID, req.Status, req.Location)
	if err != nil {
		return nil, err
	}

	// Side stores are best-effort; a cache failure never fails the update.
	if s.cache != nil {
		if err := s.cache.SetTrip(ctx, trip); err != nil {
			log.Printf("trip cache set failed for %s: %v", trip.ID, err)
		}
	}
	if s.locations != nil {
		if err := s.locations.SetTripLocation(ctx, trip.ID, req.Location); err != nil {
			log.Printf("trip location write failed for %s: %v", trip.ID, err)
		}
	}

	return trip, nil
}

// LiveLocation returns the last reported location for a trip from the
// live location store. Returns repository.ErrNotFound if the trip does not
// exist or no location has been reported.
func (s *TripService) LiveLocation(ctx context.Context, tripID string) (string, error) {
	if err := s.Exists(ctx, tripID); err != nil {
		return "", err
	}
	if s.locations == nil {
		return "", repository.ErrNotFound
	}

	location, err := s.locations.GetTripLocation(ctx, tripID)
	if err != nil {
		return "", err
	}
	if location == "" {
		return "", repository.ErrNotFound
	}
	return location, nil
}
