package credential

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-orders/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Repository backed by the session_credentials table.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Put(ctx context.Context, c Credential) error {
	const q = `
INSERT INTO session_credentials (name, token, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE
SET token = EXCLUDED.token,
    expires_at = EXCLUDED.expires_at,
    created_at = now()
`
	_, err := r.pool.Exec(ctx, q, c.Name, c.Token, c.ExpiresAt)
	return err
}

func (r *postgresRepo) Get(ctx context.Context, name string) (*Credential, error) {
	const q = `
SELECT name, token, expires_at, created_at
FROM session_credentials
WHERE name = $1 AND expires_at > now()
LIMIT 1
`
	var out Credential
	if err := r.pool.QueryRow(ctx, q, name).Scan(
		&out.Name,
		&out.Token,
		&out.ExpiresAt,
		&out.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM session_credentials WHERE name = $1`, name)
	return err
}

func (r *postgresRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
