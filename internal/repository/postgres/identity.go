package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/repository"
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// IdentityRepository is a PostgreSQL implementation of
// repository.IdentityRepository.
type IdentityRepository struct {
	q Querier
}

// NewIdentityRepository creates a new PostgreSQL identity repository.
func NewIdentityRepository(db *sql.DB) *IdentityRepository {
	return &IdentityRepository{q: db}
}

// Create persists a new identity. A unique violation on subject_id is
// surfaced as repository.ErrDuplicate so callers can re-read the winner.
func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	query := `
		INSERT INTO identities (id, subject_id, email, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		identity.ID,
		identity.SubjectID,
		identity.Email,
		pq.Array(identity.Roles),
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByID retrieves an identity by local id.
func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	query := `
		SELECT id, subject_id, email, roles, created_at, updated_at
		FROM identities WHERE id = $1
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetBySubject retrieves an identity by external subject id.
func (r *IdentityRepository) GetBySubject(ctx context.Context, subjectID string) (*domain.Identity, error) {
	query := `
		SELECT id, subject_id, email, roles, created_at, updated_at
		FROM identities WHERE subject_id = $1
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, subjectID))
}

func (r *IdentityRepository) scanOne(row *sql.Row) (*domain.Identity, error) {
	var identity domain.Identity
	err := row.Scan(
		&identity.ID,
		&identity.SubjectID,
		&identity.Email,
		pq.Array(&identity.Roles),
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &identity, nil
}

// Ensure IdentityRepository implements repository.IdentityRepository.
var _ repository.IdentityRepository = (*IdentityRepository)(nil)
