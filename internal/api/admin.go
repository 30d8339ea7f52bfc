package api

import (
	"context"
	"net/http"
	"net/url"

	"whatsapp-boost/internal/model"
)

// AdminStats fetches the dashboard summary
func (c *Client) AdminStats(ctx context.Context, token string) (*model.AdminStats, error) {
	var stats model.AdminStats
	if err := c.get(ctx, token, "/admin/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AdminOrders lists orders, optionally filtered by status
func (c *Client) AdminOrders(ctx context.Context, token string, status model.OrderStatus) ([]model.Order, error) {
	path := "/admin/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var orders []model.Order
	if err := c.get(ctx, token, path, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SetOrderStatus moves an order to a new fulfilment state
func (c *Client) SetOrderStatus(ctx context.Context, token, orderID string, status model.OrderStatus) (*model.Order, error) {
	var order model.Order
	path := "/admin/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, token, http.MethodPatch, path, model.OrderStatusUpdate{Status: status}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// AdminUsers lists accounts, optionally matching a search term
func (c *Client) AdminUsers(ctx context.Context, token, search string) ([]model.User, error) {
	path := "/admin/users"
	if search != "" {
		path += "?q=" + url.QueryEscape(search)
	}
	var users []model.User
	if err := c.get(ctx, token, path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdjustPoints credits (positive) or debits (negative) a user's balance
func (c *Client) AdjustPoints(ctx context.Context, token, userID string, adj model.PointsAdjustment) (*model.User, error) {
	var user model.User
	path := "/admin/users/" + url.PathEscape(userID) + "/points"
	if err := c.post(ctx, token, path, adj, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetUserBlocked blocks or unblocks an account
func (c *Client) SetUserBlocked(ctx context.Context, token, userID string, blocked bool) (*model.User, error) {
	var user model.User
	path := "/admin/users/" + url.PathEscape(userID)
	if err := c.do(ctx, token, http.MethodPatch, path, model.UserBlockUpdate{Blocked: blocked}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateService adds a catalog entry
func (c *Client) CreateService(ctx context.Context, token string, svc model.Service) (*model.Service, error) {
	var created model.Service
	if err := c.post(ctx, token, "/admin/services", svc, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateService changes a catalog entry
func (c *Client) UpdateService(ctx context.Context, token, serviceID string, update model.ServiceUpdate) (*model.Service, error) {
	var svc model.Service
	path := "/admin/services/" + url.PathEscape(serviceID)
	if err := c.do(ctx, token, http.MethodPatch, path, update, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

// DrawRound triggers the draw of the open lottery round
func (c *Client) DrawRound(ctx context.Context, token string) (*model.LotteryRound, error) {
	var round model.LotteryRound
	if err := c.post(ctx, token, "/admin/lottery/draw", nil, &round); err != nil {
		return nil, err
	}
	return &round, nil
}

// AdminTickets lists support tickets, optionally filtered by status
func (c *Client) AdminTickets(ctx context.Context, token string, status model.TicketStatus) ([]model.SupportTicket, error) {
	path := "/admin/support/tickets"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var tickets []model.SupportTicket
	if err := c.get(ctx, token, path, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// ReplyTicket answers a support ticket
func (c *Client) ReplyTicket(ctx context.Context, token, ticketID, message string) (*model.SupportTicket, error) {
	var ticket model.SupportTicket
	path := "/admin/support/tickets/" + url.PathEscape(ticketID) + "/reply"
	if err := c.post(ctx, token, path, model.TicketReplyRequest{Message: message}, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Settings lists platform settings
func (c *Client) Settings(ctx context.Context, token string) ([]model.Setting, error) {
	var settings []model.Setting
	if err := c.get(ctx, token, "/admin/settings", &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSetting changes one platform setting
func (c *Client) UpdateSetting(ctx context.Context, token string, setting model.Setting) (*model.Setting, error) {
	var updated model.Setting
	path := "/admin/settings/" + url.PathEscape(setting.Key)
	if err := c.do(ctx, token, http.MethodPut, path, setting, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
