package api

import (
	"context"
	"fmt"
	"net/url"

	"whatsapp-boost/internal/model"
)

// Deposit initiates a mobile-money charge and returns its payment handle
func (c *Client) Deposit(ctx context.Context, token string, req model.DepositRequest) (*model.PaymentHandle, error) {
	var handle model.PaymentHandle
	if err := c.post(ctx, token, "/wallet/deposit", req, &handle); err != nil {
		return nil, err
	}
	if handle.ExternalID == "" {
		return nil, fmt.Errorf("%w: deposit: empty external_id", ErrMalformedResponse)
	}
	return &handle, nil
}

// PaymentStatus fetches the current status of a payment attempt
func (c *Client) PaymentStatus(ctx context.Context, token, externalID string) (model.PaymentStatus, error) {
	var resp model.PaymentStatusResponse
	path := "/wallet/payment/" + url.PathEscape(externalID) + "/status"
	if err := c.get(ctx, token, path, &resp); err != nil {
		return "", err
	}
	if !resp.Status.Valid() {
		c.logger.WithExternalID(externalID).Warn("Unknown payment status", "status", resp.Status)
		return "", fmt.Errorf("%w: payment status %q", ErrMalformedResponse, resp.Status)
	}
	return resp.Status, nil
}

// Balance fetches the authoritative points balance
func (c *Client) Balance(ctx context.Context, token string) (*model.Balance, error) {
	var balance model.Balance
	if err := c.get(ctx, token, "/wallet/balance", &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// Transactions fetches the wallet history
func (c *Client) Transactions(ctx context.Context, token string) ([]model.Transaction, error) {
	var txs []model.Transaction
	if err := c.get(ctx, token, "/wallet/transactions", &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// LookupRecipient resolves the account behind a phone number
func (c *Client) LookupRecipient(ctx context.Context, token, phone string) (*model.Recipient, error) {
	var recipient model.Recipient
	path := "/wallet/recipient?phone=" + url.QueryEscape(phone)
	if err := c.get(ctx, token, path, &recipient); err != nil {
		return nil, err
	}
	if recipient.ID == "" {
		return nil, fmt.Errorf("%w: recipient: empty id", ErrMalformedResponse)
	}
	return &recipient, nil
}

// Transfer sends points to another account
func (c *Client) Transfer(ctx context.Context, token string, req model.TransferRequest) (*model.TransferResult, error) {
	var result model.TransferResult
	if err := c.post(ctx, token, "/wallet/transfer", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
