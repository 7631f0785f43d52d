package domain

import "github.com/shopspring/decimal"

// Amount is a monetary value in the store currency.
type Amount = decimal.Decimal

// Order is a read-only snapshot of a backend order.
type Order struct {
	ID             string       `json:"orderId"`
	OwnerUserID    string       `json:"ownerUserId"`
	OrderDate      string       `json:"orderDate"`
	TotalAmount    Amount       `json:"totalAmount"`
	Status         OrderStatus  `json:"status"`
	ShipmentStatus string       `json:"shipmentStatus,omitempty"`
	ShipmentID     string       `json:"shipmentId,omitempty"`
	Owner          *UserSummary `json:"owner,omitempty"`
	Items          []OrderItem  `json:"items"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID        string          `json:"orderItemId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice Amount          `json:"unitPrice"`
	Product   *ProductSummary `json:"product,omitempty"`
}

// LineTotal returns quantity × unit price. It is informational only and is
// never summed back into the order total.
func (i OrderItem) LineTotal() Amount {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ProductSummary is the product data joined onto an order item.
type ProductSummary struct {
	ProductID   string `json:"productId,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UserSummary is the owner data joined onto an order.
type UserSummary struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}
