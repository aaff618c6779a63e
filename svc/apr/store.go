package apr

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store defines APR persistence. Risk entries are stored as jsonb.
type Store interface {
	Create(ctx context.Context, a *APR) error
	Update(ctx context.Context, a *APR) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*APR, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]APR, error)
	Count(ctx context.Context) (int64, error)
}

// PGStore implements Store on a pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates an APR store backed by PostgreSQL.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const aprColumns = `id, project_id, user_id, title, activity, risks, status, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, a *APR) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO aprs (id, project_id, user_id, title, activity, risks, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.ProjectID, a.UserID, a.Title, a.Activity, a.Risks, a.Status,
	)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (s *PGStore) Update(ctx context.Context, a *APR) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE aprs
		SET title = $2, activity = $3, risks = $4, status = $5, updated_at = now()
		WHERE id = $1`,
		a.ID, a.Title, a.Activity, a.Risks, a.Status,
	)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM aprs WHERE id = $1`, id)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*APR, error) {
	var a APR
	err := s.pool.QueryRow(ctx, `SELECT `+aprColumns+` FROM aprs WHERE id = $1`, id).Scan(
		&a.ID, &a.ProjectID, &a.UserID, &a.Title, &a.Activity, &a.Risks,
		&a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return &a, nil
}

func (s *PGStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]APR, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+aprColumns+` FROM aprs WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer rows.Close()

	var aprs []APR
	for rows.Next() {
		var a APR
		if err := rows.Scan(
			&a.ID, &a.ProjectID, &a.UserID, &a.Title, &a.Activity, &a.Risks,
			&a.Status, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}
		aprs = append(aprs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return aprs, nil
}

func (s *PGStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM aprs`).Scan(&count); err != nil {
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return count, nil
}
