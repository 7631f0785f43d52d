package product

import (
	"context"

	"storefront-orders/internal/domain"
)

type Repository interface {
	// GetByIDs returns the products found among ids, keyed by id. Unknown
	// ids are left out rather than reported.
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
