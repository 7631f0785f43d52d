// Package orders turns session state and fetched order data into the
// list and detail view states shown by the storefront.
package orders

import (
	"context"

	"storefront-orders/internal/domain"
)

// Source fetches orders from their data owner. Order returns
// domain.ErrNotFound when no order matches. Any other error text is shown
// to the user as is.
type Source interface {
	OrdersByUser(ctx context.Context, token, userID string) ([]domain.Order, error)
	Order(ctx context.Context, token, orderID string) (*domain.Order, error)
}

// Formatter renders amounts and timestamps for display.
type Formatter interface {
	Price(amount domain.Amount) string
	Date(raw string) string
	DateTime(raw string) string
}

// SessionFeed delivers session changes to a controller.
type SessionFeed interface {
	Subscribe(fn func(domain.Session)) (unsubscribe func())
}
