package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
)

// CacheStore handles trip snapshot caching in Redis. It backs the fast
// path of the realtime gateway's trip-existence check so a burst of room
// joins does not hammer PostgreSQL.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// TripCacheTTL is short; trip status changes in real time.
const TripCacheTTL = 30 * time.Second

const tripCachePrefix = "cache:trip:"

// CachedTrip represents a cached trip snapshot.
type CachedTrip struct {
	ID              string `json:"id"`
	RiderID         string `json:"rider_id"`
	Destination     string `json:"destination"`
	Status          string `json:"status"`
	CurrentLocation string `json:"current_location,omitempty"`
}

// GetTrip retrieves a trip from cache. A miss returns (nil, nil).
func (s *CacheStore) GetTrip(ctx context.Context, tripID string) (*CachedTrip, error) {
	data, err := s.client.Get(ctx, tripCachePrefix+tripID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var trip CachedTrip
	if err := json.Unmarshal(data, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// SetTrip stores a trip snapshot in cache.
func (s *CacheStore) SetTrip(ctx context.Context, trip *domain.Trip) error {
	data, err := json.Marshal(&CachedTrip{
		ID:              trip.ID,
		RiderID:         trip.RiderID,
		Destination:     trip.Destination,
		Status:          string(trip.Status),
		CurrentLocation: trip.CurrentLocation,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, tripCachePrefix+trip.ID, data, TripCacheTTL).Err()
}

// InvalidateTrip removes a trip from cache.
func (s *CacheStore) InvalidateTrip(ctx context.Context, tripID string) error {
	return s.client.Del(ctx, tripCachePrefix+tripID).Err()
}
