package model

// Setting is a platform configuration entry
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AdminStats is the admin dashboard summary
type AdminStats struct {
	Users         int64 `json:"users"`
	OrdersPending int64 `json:"orders_pending"`
	OrdersTotal   int64 `json:"orders_total"`
	DepositsToday int64 `json:"deposits_today_fcfa"`
	OpenTickets   int64 `json:"open_tickets"`
}

// OrderStatusUpdate represents PATCH /admin/orders/{id}
type OrderStatusUpdate struct {
	Status OrderStatus `json:"status"`
}

// PointsAdjustment represents POST /admin/users/{id}/points
type PointsAdjustment struct {
	Points int64  `json:"points"`
	Reason string `json:"reason"`
}

// UserBlockUpdate represents PATCH /admin/users/{id}
type UserBlockUpdate struct {
	Blocked bool `json:"blocked"`
}

// ServiceUpdate represents PATCH /admin/services/{id}
type ServiceUpdate struct {
	Active *bool  `json:"active,omitempty"`
	Price  *int64 `json:"price_per_unit,omitempty"`
}

// TicketReplyRequest represents POST /admin/support/tickets/{id}/reply
type TicketReplyRequest struct {
	Message string `json:"message"`
}
