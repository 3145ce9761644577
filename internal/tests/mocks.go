package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/redis"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK IDENTITY REPOSITORY
// ──────────────────────────────────────────────

// MockIdentityRepository is a mock implementation of IdentityRepository.
type MockIdentityRepository struct {
	mu        sync.RWMutex
	byID      map[string]*domain.Identity
	bySubject map[string]*domain.Identity

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
	GetError    error
}

// NewMockIdentityRepository creates a new mock identity repository.
func NewMockIdentityRepository() *MockIdentityRepository {
	return &MockIdentityRepository{
		byID:      make(map[string]*domain.Identity),
		bySubject: make(map[string]*domain.Identity),
	}
}

// AddIdentity adds an identity to the mock repository.
func (m *MockIdentityRepository) AddIdentity(identity *domain.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[identity.ID] = identity
	m.bySubject[identity.SubjectID] = identity
}

func (m *MockIdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.bySubject[identity.SubjectID]; exists {
		return repository.ErrDuplicate
	}
	m.byID[identity.ID] = identity
	m.bySubject[identity.SubjectID] = identity
	return nil
}

func (m *MockIdentityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	identity, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *identity
	return &copy, nil
}

func (m *MockIdentityRepository) GetBySubject(ctx context.Context, subjectID string) (*domain.Identity, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	identity, ok := m.bySubject[subjectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *identity
	return &copy, nil
}

// CountIdentities returns the number of stored identities.
func (m *MockIdentityRepository) CountIdentities() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bySubject)
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) ListRequested(ctx context.Context) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0)
	for _, t := range m.trips {
		if t.Status == domain.TripStatusRequested {
			copy := *t
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTripRepository) UpdateStatusLocation(ctx context.Context, id string, status domain.TripStatus, location string) (*domain.Trip, error) {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	trip.Status = status
	trip.CurrentLocation = location
	trip.UpdatedAt = time.Now()
	copy := *trip
	return &copy, nil
}

// GetTrip returns trip for assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// CountTrips returns the number of trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

// ──────────────────────────────────────────────
// MOCK TRIP CACHE
// ──────────────────────────────────────────────

// MockTripCache is an in-memory implementation of TripCache.
type MockTripCache struct {
	mu      sync.RWMutex
	entries map[string]*redis.CachedTrip

	// Counters
	GetCallCount int32
	SetCallCount int32

	// Error injection
	GetError error
	SetError error
}

// NewMockTripCache creates a new mock trip cache.
func NewMockTripCache() *MockTripCache {
	return &MockTripCache{
		entries: make(map[string]*redis.CachedTrip),
	}
}

func (m *MockTripCache) GetTrip(ctx context.Context, tripID string) (*redis.CachedTrip, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[tripID]
	if !ok {
		return nil, nil // Cache miss is not an error.
	}
	copy := *entry
	return &copy, nil
}

func (m *MockTripCache) SetTrip(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[trip.ID] = &redis.CachedTrip{
		ID:              trip.ID,
		RiderID:         trip.RiderID,
		Destination:     trip.Destination,
		Status:          string(trip.Status),
		CurrentLocation: trip.CurrentLocation,
	}
	return nil
}

func (m *MockTripCache) InvalidateTrip(ctx context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, tripID)
	return nil
}

// HasTrip checks if a trip snapshot is cached.
func (m *MockTripCache) HasTrip(tripID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[tripID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is an in-memory implementation of TripLocations.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[string]string

	// Counters
	SetCallCount int32

	// Error injection
	SetError error
	GetError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make(map[string]string),
	}
}

func (m *MockLocationStore) SetTripLocation(ctx context.Context, tripID, location string) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[tripID] = location
	return nil
}

func (m *MockLocationStore) GetTripLocation(ctx context.Context, tripID string) (string, error) {
	if m.GetError != nil {
		return "", m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.locations[tripID], nil
}

func (m *MockLocationStore) RemoveTripLocation(ctx context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, tripID)
	return nil
}

// HasLocation checks if a live location exists for a trip.
func (m *MockLocationStore) HasLocation(tripID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.locations[tripID]
	return ok
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockTimeout = errors.New("mock: operation timeout")
)
