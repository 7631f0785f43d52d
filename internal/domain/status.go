package domain

import "strings"

// OrderStatus is the status text as recorded by the order backend.
type OrderStatus string

const (
	StatusPlaced    OrderStatus = "Dipesan"
	StatusInTransit OrderStatus = "Dalam Pengiriman"
	StatusCompleted OrderStatus = "Selesai"
)

// StatusKind buckets backend status text into the states the storefront knows.
type StatusKind int

const (
	StatusKindOther StatusKind = iota
	StatusKindPlaced
	StatusKindInTransit
	StatusKindCompleted
)

// Kind maps the raw status into a bucket. Unrecognized values, including
// statuses the backend adds later, land in StatusKindOther.
func (s OrderStatus) Kind() StatusKind {
	switch OrderStatus(strings.TrimSpace(string(s))) {
	case StatusPlaced:
		return StatusKindPlaced
	case StatusInTransit:
		return StatusKindInTransit
	case StatusCompleted:
		return StatusKindCompleted
	default:
		return StatusKindOther
	}
}

func (k StatusKind) String() string {
	switch k {
	case StatusKindPlaced:
		return "placed"
	case StatusKindInTransit:
		return "in_transit"
	case StatusKindCompleted:
		return "completed"
	default:
		return "other"
	}
}
