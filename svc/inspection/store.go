package inspection

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store defines inspection persistence. Checklist items and photo references
// are stored as jsonb.
type Store interface {
	Create(ctx context.Context, i *Inspection) error
	Update(ctx context.Context, i *Inspection) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Inspection, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Inspection, error)
	Count(ctx context.Context) (int64, error)
}

// PGStore implements Store on a pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates an inspection store backed by PostgreSQL.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const inspectionColumns = `id, project_id, user_id, title, status, score, items, photo_urls, signature, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, i *Inspection) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO inspections (id, project_id, user_id, title, status, score, items, photo_urls, signature)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		i.ID, i.ProjectID, i.UserID, i.Title, i.Status, i.Score, i.Items, i.PhotoURLs, i.Signature,
	)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (s *PGStore) Update(ctx context.Context, i *Inspection) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE inspections
		SET title = $2, status = $3, score = $4, items = $5, photo_urls = $6,
		    signature = $7, updated_at = now()
		WHERE id = $1`,
		i.ID, i.Title, i.Status, i.Score, i.Items, i.PhotoURLs, i.Signature,
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
	tag, err := s.pool.Exec(ctx, `DELETE FROM inspections WHERE id = $1`, id)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*Inspection, error) {
	var i Inspection
	err := s.pool.QueryRow(ctx, `SELECT `+inspectionColumns+` FROM inspections WHERE id = $1`, id).Scan(
		&i.ID, &i.ProjectID, &i.UserID, &i.Title, &i.Status, &i.Score,
		&i.Items, &i.PhotoURLs, &i.Signature, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return &i, nil
}

func (s *PGStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]Inspection, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+inspectionColumns+` FROM inspections WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer rows.Close()

	var inspections []Inspection
	for rows.Next() {
		var i Inspection
		if err := rows.Scan(
			&i.ID, &i.ProjectID, &i.UserID, &i.Title, &i.Status, &i.Score,
			&i.Items, &i.PhotoURLs, &i.Signature, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}
		inspections = append(inspections, i)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return inspections, nil
}

func (s *PGStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM inspections`).Scan(&count); err != nil {
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return count, nil
}
