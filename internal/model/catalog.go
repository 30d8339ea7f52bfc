package model

import "time"

// Service is a purchasable engagement product
type Service struct {
	ID           string `json:"id"`
	Platform     string `json:"platform"`
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	PricePerUnit int64  `json:"price_per_unit"`
	UnitSize     int64  `json:"unit_size"`
	MinQuantity  int64  `json:"min_quantity"`
	MaxQuantity  int64  `json:"max_quantity"`
	Active       bool   `json:"active"`
}

// Cost returns the points price of quantity units, rounded up to a whole unit block
func (s Service) Cost(quantity int64) int64 {
	unit := s.UnitSize
	if unit <= 0 {
		unit = 1
	}
	blocks := (quantity + unit - 1) / unit
	return blocks * s.PricePerUnit
}

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderCompleted, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// Order is a placed boosting order
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id,omitempty"`
	ServiceID string      `json:"service_id"`
	Service   string      `json:"service_name,omitempty"`
	Link      string      `json:"link"`
	Quantity  int64       `json:"quantity"`
	Cost      int64       `json:"cost"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// CreateOrderRequest represents POST /orders
type CreateOrderRequest struct {
	ServiceID string `json:"service_id"`
	Link      string `json:"link"`
	Quantity  int64  `json:"quantity"`
}
