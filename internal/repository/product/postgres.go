package product

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront-orders/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	keys := make([]int64, 0, len(ids))
	for _, id := range ids {
		if v, err := strconv.ParseInt(domain.NormalizeID(id), 10, 64); err == nil {
			keys = append(keys, v)
		}
	}
	result := make(map[string]domain.Product, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	const q = `
SELECT id::text, name, COALESCE(description, ''), price::text
FROM products
WHERE id = ANY($1)
`
	rows, err := r.pool.Query(ctx, q, keys)
	if err != nil {
		r.logger.Printf("product repo: get ids=%d error=%v", len(keys), err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p     domain.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &price); err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("product repo: product %s price %q: %w", p.ID, price, err)
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: get rows error=%v", err)
		return nil, err
	}
	r.logger.Printf("product repo: get ids=%d found=%d", len(keys), len(result))
	return result, nil
}

// Upsert writes p under its own id so repeated seeding converges.
func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	id, err := strconv.ParseInt(domain.NormalizeID(p.ID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("product repo: invalid id %q", p.ID)
	}
	const q = `
INSERT INTO products (id, name, description, price)
VALUES ($1, $2, NULLIF($3, ''), $4::text::numeric)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price
RETURNING id::text
`
	res := p
	if err := r.pool.QueryRow(ctx, q, id, p.Name, p.Description, p.Price.String()).Scan(&res.ID); err != nil {
		r.logger.Printf("product repo: upsert id=%s error=%v", p.ID, err)
		return nil, err
	}
	// Explicit ids bypass the sequence; keep it ahead of them.
	const bump = `SELECT setval(pg_get_serial_sequence('products', 'id'), GREATEST((SELECT MAX(id) FROM products), 1))`
	if _, err := r.pool.Exec(ctx, bump); err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: upserted id=%s name=%s", res.ID, res.Name)
	return &res, nil
}
