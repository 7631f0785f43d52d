package orders

import (
	"strings"

	"storefront-orders/internal/domain"
)

// Phase is the tag of a view state.
type Phase string

const (
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseLoading         Phase = "loading"
	PhaseFailed          Phase = "failed"
	PhaseForbidden       Phase = "forbidden"
	PhaseEmpty           Phase = "empty"
	PhaseNotFound        Phase = "not_found"
	PhaseReady           Phase = "ready"
)

// Action is a user-facing state transition trigger offered by a view.
type Action string

const (
	ActionRetry      Action = "retry"
	ActionLogin      Action = "login"
	ActionBackToList Action = "back_to_list"
)

// Tone is the visual emphasis of a status badge.
type Tone string

const (
	ToneWarning Tone = "warning"
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneNeutral Tone = "neutral"
)

const unknownStatusLabel = "Unknown"

// ListView is the state of the order history page. Orders is set only in
// PhaseReady and Message only in PhaseFailed.
type ListView struct {
	State   Phase       `json:"state"`
	Message string      `json:"message,omitempty"`
	Orders  []OrderView `json:"orders,omitempty"`
	Actions []Action    `json:"actions,omitempty"`
}

// DetailView is the state of the single order page. Order is set only in
// PhaseReady.
type DetailView struct {
	State   Phase      `json:"state"`
	Message string     `json:"message,omitempty"`
	Order   *OrderView `json:"order,omitempty"`
	Actions []Action   `json:"actions,omitempty"`
}

type OrderView struct {
	OrderID        string        `json:"orderId"`
	Date           string        `json:"date"`
	Total          string        `json:"total"`
	Status         StatusView    `json:"status"`
	ShipmentStatus string        `json:"shipmentStatus,omitempty"`
	Shipment       *ShipmentView `json:"shipment,omitempty"`
	Owner          *OwnerView    `json:"owner,omitempty"`
	Items          []ItemView    `json:"items"`
}

type StatusView struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

type ItemView struct {
	OrderItemID string `json:"orderItemId"`
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	LineTotal   string `json:"lineTotal"`
}

type ShipmentView struct {
	ShipmentID string `json:"shipmentId"`
	Status     string `json:"status,omitempty"`
}

type OwnerView struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Status maps a backend status to its badge. Statuses the storefront does
// not know keep their own text with a neutral tone.
func Status(s domain.OrderStatus) StatusView {
	kind := s.Kind()
	v := StatusView{Kind: kind.String(), Label: strings.TrimSpace(string(s))}
	switch kind {
	case domain.StatusKindPlaced:
		v.Tone = ToneWarning
	case domain.StatusKindInTransit:
		v.Tone = ToneInfo
	case domain.StatusKindCompleted:
		v.Tone = ToneSuccess
	default:
		v.Tone = ToneNeutral
	}
	if v.Label == "" {
		v.Label = unknownStatusLabel
	}
	return v
}

func projectOrder(o domain.Order, f Formatter, detailed bool) OrderView {
	v := OrderView{
		OrderID: o.ID,
		Total:   f.Price(o.TotalAmount),
		Status:  Status(o.Status),
		Items:   make([]ItemView, 0, len(o.Items)),
	}
	if detailed {
		v.Date = f.DateTime(o.OrderDate)
		if o.ShipmentID != "" {
			v.Shipment = &ShipmentView{ShipmentID: o.ShipmentID, Status: o.ShipmentStatus}
		}
		if o.Owner != nil {
			v.Owner = &OwnerView{Name: o.Owner.Name, Email: o.Owner.Email}
		}
	} else {
		v.Date = f.Date(o.OrderDate)
		v.ShipmentStatus = o.ShipmentStatus
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, projectItem(it, f, detailed))
	}
	return v
}

func projectItem(it domain.OrderItem, f Formatter, detailed bool) ItemView {
	v := ItemView{
		OrderItemID: it.ID,
		ProductID:   it.ProductID,
		Name:        "Product " + it.ProductID,
		Quantity:    it.Quantity,
		UnitPrice:   f.Price(it.UnitPrice) + " each",
		LineTotal:   f.Price(it.LineTotal()),
	}
	if it.Product != nil && strings.TrimSpace(it.Product.Name) != "" {
		v.Name = it.Product.Name
	}
	if detailed && it.Product != nil {
		v.Description = it.Product.Description
	}
	return v
}
