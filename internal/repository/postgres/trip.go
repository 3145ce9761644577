package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

const tripWithRiderColumns = `
	t.id, t.rider_id, t.destination, t.status, t.current_location, t.created_at, t.updated_at,
	i.id, i.subject_id, i.email, i.roles, i.created_at, i.updated_at
`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (id, rider_id, destination, status, current_location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var location sql.NullString
	if trip.CurrentLocation != "" {
		location = sql.NullString{String: trip.CurrentLocation, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.RiderID,
		trip.Destination,
		trip.Status,
		location,
		trip.CreatedAt,
		trip.UpdatedAt,
	)
	return err
}

// GetByID retrieves a trip by ID with its rider identity embedded.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `
		SELECT ` + tripWithRiderColumns + `
		FROM trips t
		JOIN identities i ON i.id = t.rider_id
		WHERE t.id = $1
	`

	trip, err := scanTripWithRider(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

// ListRequested retrieves trips still in REQUESTED status, newest first.
func (r *TripRepository) ListRequested(ctx context.Context) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripWithRiderColumns + `
		FROM trips t
		JOIN identities i ON i.id = t.rider_id
		WHERE t.status = $1
		ORDER BY t.created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, domain.TripStatusRequested)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTripWithRider(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// UpdateStatusLocation sets status and current location in one atomic
// write; the last successful update wins. The post-update trip is re-read
// with its rider embedded.
func (r *TripRepository) UpdateStatusLocation(ctx context.Context, id string, status domain.TripStatus, location string) (*domain.Trip, error) {
	query := `
		UPDATE trips
		SET status = $1, current_location = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.q.ExecContext(ctx, query, status, location, time.Now(), id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, repository.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTripWithRider(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var rider domain.Identity
	var location sql.NullString

	err := row.Scan(
		&trip.ID,
		&trip.RiderID,
		&trip.Destination,
		&trip.Status,
		&location,
		&trip.CreatedAt,
		&trip.UpdatedAt,
		&rider.ID,
		&rider.SubjectID,
		&rider.Email,
		pq.Array(&rider.Roles),
		&rider.CreatedAt,
		&rider.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if location.Valid {
		trip.CurrentLocation = location.String
	}
	trip.Rider = &rider
	return &trip, nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
