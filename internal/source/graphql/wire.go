package graphql

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront-orders/internal/domain"
)

// scalar accepts a JSON string or number and keeps its text. Backends
// disagree on whether identifiers and timestamps are numeric.
type scalar string

func (s *scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = scalar(strings.TrimSpace(v))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", b)
		}
		*s = scalar(n.String())
		return nil
	}
}

type wireOrder struct {
	OrderID        scalar          `json:"order_id"`
	UserID         scalar          `json:"user_id"`
	OrderDate      scalar          `json:"order_date"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         string          `json:"status"`
	ShipmentStatus scalar          `json:"shipment_status"`
	ShipmentID     scalar          `json:"shipment_id"`
	User           *wireUser       `json:"user"`
	Items          []wireItem      `json:"items"`
}

type wireItem struct {
	OrderItemID scalar          `json:"order_item_id"`
	ProductID   scalar          `json:"product_id"`
	Quantity    scalar          `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Product     *wireProduct    `json:"product"`
}

type wireProduct struct {
	ProductID   scalar `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type wireUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

var errMalformed = errors.New("malformed order response")

func (w wireOrder) toDomain() (domain.Order, error) {
	if w.OrderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order without order_id", errMalformed)
	}
	o := domain.Order{
		ID:             domain.NormalizeID(string(w.OrderID)),
		OwnerUserID:    domain.NormalizeID(string(w.UserID)),
		OrderDate:      string(w.OrderDate),
		TotalAmount:    w.TotalAmount,
		Status:         domain.OrderStatus(w.Status),
		ShipmentStatus: string(w.ShipmentStatus),
		ShipmentID:     string(w.ShipmentID),
		Items:          make([]domain.OrderItem, 0, len(w.Items)),
	}
	if w.User != nil {
		o.Owner = &domain.UserSummary{Name: w.User.Name, Email: w.User.Email}
	}
	for _, wi := range w.Items {
		it, err := wi.toDomain()
		if err != nil {
			return domain.Order{}, fmt.Errorf("%w: order %s: %v", errMalformed, o.ID, err)
		}
		o.Items = append(o.Items, it)
	}
	return o, nil
}

func (w wireItem) toDomain() (domain.OrderItem, error) {
	qty, err := strconv.Atoi(string(w.Quantity))
	if err != nil || qty <= 0 {
		return domain.OrderItem{}, fmt.Errorf("item %s: quantity %q", w.OrderItemID, w.Quantity)
	}
	if w.Price.IsNegative() {
		return domain.OrderItem{}, fmt.Errorf("item %s: negative price", w.OrderItemID)
	}
	it := domain.OrderItem{
		ID:        domain.NormalizeID(string(w.OrderItemID)),
		ProductID: domain.NormalizeID(string(w.ProductID)),
		Quantity:  qty,
		UnitPrice: w.Price,
	}
	if w.Product != nil {
		it.Product = w.Product.toDomain()
		if it.ProductID == "" {
			it.ProductID = it.Product.ProductID
		}
	}
	return it, nil
}

func (w wireProduct) toDomain() *domain.ProductSummary {
	return &domain.ProductSummary{
		ProductID:   domain.NormalizeID(string(w.ProductID)),
		Name:        w.Name,
		Description: w.Description,
	}
}
