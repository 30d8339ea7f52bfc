package api

import (
	"context"

	"whatsapp-boost/internal/model"
)

// CreateTicket opens a support ticket
func (c *Client) CreateTicket(ctx context.Context, token string, req model.CreateTicketRequest) (*model.SupportTicket, error) {
	var ticket model.SupportTicket
	if err := c.post(ctx, token, "/support/tickets", req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Tickets lists the caller's support tickets
func (c *Client) Tickets(ctx context.Context, token string) ([]model.SupportTicket, error) {
	var tickets []model.SupportTicket
	if err := c.get(ctx, token, "/support/tickets", &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}
