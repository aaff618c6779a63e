package project

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store defines project persistence.
type Store interface {
	Create(ctx context.Context, p *Project) error
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Project, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Project, error)

	// ListMissingCoordinates returns projects with an address but no
	// resolved coordinates yet, for the geocode backfill.
	ListMissingCoordinates(ctx context.Context, limit int) ([]Project, error)
	UpdateCoordinates(ctx context.Context, id uuid.UUID, lat, lng float64) error

	ListLocations(ctx context.Context, limit int) ([]Location, error)
	Count(ctx context.Context) (int64, error)
}

// PGStore implements Store on a pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a project store backed by PostgreSQL.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const projectColumns = `id, user_id, name, address, status, safety_score, progress, manager, lat, lng, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, p *Project) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO projects (id, user_id, name, address, status, safety_score, progress, manager)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.UserID, p.Name, p.Address, p.Status, p.SafetyScore, p.Progress, p.Manager,
	)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (s *PGStore) Update(ctx context.Context, p *Project) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE projects
		SET name = $2, address = $3, status = $4, safety_score = $5,
		    progress = $6, manager = $7, updated_at = now()
		WHERE id = $1`,
		p.ID, p.Name, p.Address, p.Status, p.SafetyScore, p.Progress, p.Manager,
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
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	var p Project
	err := s.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Address, &p.Status, &p.SafetyScore,
		&p.Progress, &p.Manager, &p.Lat, &p.Lng, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return &p, nil
}

func (s *PGStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (s *PGStore) ListMissingCoordinates(ctx context.Context, limit int) ([]Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE lat IS NULL AND address IS NOT NULL AND address <> ''
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (s *PGStore) UpdateCoordinates(ctx context.Context, id uuid.UUID, lat, lng float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET lat = $2, lng = $3, updated_at = now() WHERE id = $1`, id, lat, lng)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) ListLocations(ctx context.Context, limit int) ([]Location, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, address, status, lat, lng FROM projects LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.Status, &l.Lat, &l.Lng); err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return locations, nil
}

func (s *PGStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM projects`).Scan(&count); err != nil {
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return count, nil
}

func scanProjects(rows pgx.Rows) ([]Project, error) {
	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.Address, &p.Status, &p.SafetyScore,
			&p.Progress, &p.Manager, &p.Lat, &p.Lng, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return projects, nil
}
