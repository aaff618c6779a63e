package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store defines profile persistence. Lookup misses return ErrNotFound.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	GetByCustomerID(ctx context.Context, customerID string) (*Profile, error)

	// UpdateBilling overwrites the three billing fields on the profile row.
	UpdateBilling(ctx context.Context, id uuid.UUID, upd BillingUpdate) error

	// Count returns the total number of registered profiles.
	Count(ctx context.Context) (int64, error)
}

// PGStore implements Store on a pgx connection pool. Row-level security is
// bypassed here by design: the pool connects with the privileged service
// role, which must never be exposed outside the server process.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a profile store backed by PostgreSQL.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const profileColumns = `id, email, subscription_status, stripe_customer_id, price_id, created_at, updated_at`

func (s *PGStore) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.getBy(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
}

func (s *PGStore) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	return s.getBy(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email)
}

func (s *PGStore) GetByCustomerID(ctx context.Context, customerID string) (*Profile, error) {
	return s.getBy(ctx, `SELECT `+profileColumns+` FROM profiles WHERE stripe_customer_id = $1`, customerID)
}

func (s *PGStore) getBy(ctx context.Context, query string, arg any) (*Profile, error) {
	var p Profile
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.Email, &p.SubscriptionStatus, &p.StripeCustomerID, &p.PriceID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return &p, nil
}

func (s *PGStore) UpdateBilling(ctx context.Context, id uuid.UUID, upd BillingUpdate) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE profiles
		SET subscription_status = $2,
		    stripe_customer_id = $3,
		    price_id = $4,
		    updated_at = now()
		WHERE id = $1`,
		id, upd.SubscriptionStatus, upd.StripeCustomerID, upd.PriceID,
	)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (s *PGStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM profiles`).Scan(&count); err != nil {
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return count, nil
}
