package api

import (
	"context"

	"whatsapp-boost/internal/model"
)

// Services lists the service catalog
func (c *Client) Services(ctx context.Context, token string) ([]model.Service, error) {
	var services []model.Service
	if err := c.get(ctx, token, "/services", &services); err != nil {
		return nil, err
	}
	return services, nil
}

// CreateOrder places a boosting order
func (c *Client) CreateOrder(ctx context.Context, token string, req model.CreateOrderRequest) (*model.Order, error) {
	var order model.Order
	if err := c.post(ctx, token, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Orders lists the caller's orders
func (c *Client) Orders(ctx context.Context, token string) ([]model.Order, error) {
	var orders []model.Order
	if err := c.get(ctx, token, "/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
