package api

import (
	"context"

	"whatsapp-boost/internal/model"
)

// CurrentRound fetches the open "Grande Roue" round
func (c *Client) CurrentRound(ctx context.Context, token string) (*model.LotteryRound, error) {
	var round model.LotteryRound
	if err := c.get(ctx, token, "/lottery/current", &round); err != nil {
		return nil, err
	}
	return &round, nil
}

// BuyTickets buys tickets for a round
func (c *Client) BuyTickets(ctx context.Context, token string, req model.BuyTicketsRequest) ([]model.LotteryTicket, error) {
	var tickets []model.LotteryTicket
	if err := c.post(ctx, token, "/lottery/tickets", req, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// MyTickets lists the caller's tickets
func (c *Client) MyTickets(ctx context.Context, token string) ([]model.LotteryTicket, error) {
	var tickets []model.LotteryTicket
	if err := c.get(ctx, token, "/lottery/tickets", &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// RoundHistory lists past rounds and their winners
func (c *Client) RoundHistory(ctx context.Context, token string) ([]model.LotteryRound, error) {
	var rounds []model.LotteryRound
	if err := c.get(ctx, token, "/lottery/history", &rounds); err != nil {
		return nil, err
	}
	return rounds, nil
}
