package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	tripLocationPrefix = "trips:locations:"
	tripLocationTTL    = 10 * time.Minute
)

// LocationStore keeps the last reported location per trip in Redis. It is
// written best-effort on every driver location update and serves live
// position reads without touching PostgreSQL.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// SetTripLocation stores the latest location string reported for a trip.
func (s *LocationStore) SetTripLocation(ctx context.Context, tripID, location string) error {
	return s.client.Set(ctx, tripLocationPrefix+tripID, location, tripLocationTTL).Err()
}

// GetTripLocation returns the last reported location for a trip, or ""
// if none has been reported within the TTL window.
func (s *LocationStore) GetTripLocation(ctx context.Context, tripID string) (string, error) {
	location, err := s.client.Get(ctx, tripLocationPrefix+tripID).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return location, nil
}

// RemoveTripLocation drops the stored location for a trip.
func (s *LocationStore) RemoveTripLocation(ctx context.Context, tripID string) error {
	return s.client.Del(ctx, tripLocationPrefix+tripID).Err()
}
