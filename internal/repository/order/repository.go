package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront-orders/internal/domain"
)

// Repository reads and writes orders with their items. Product and owner
// summaries are not joined here; they belong to other data owners.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
}

type CreateOrderInput struct {
	UserID         string
	OrderDate      time.Time
	Status         domain.OrderStatus
	ShipmentStatus string
	ShipmentID     string
	Items          []CreateItemInput
}

type CreateItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice domain.Amount
}

// Total is the sum of the line totals. Orders store it once at creation.
func (in CreateOrderInput) Total() domain.Amount {
	total := decimal.Zero
	for _, it := range in.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
