package api

import (
	"context"
	"fmt"

	"whatsapp-boost/internal/model"
)

// Login exchanges phone and password for a bearer token
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResult, error) {
	var result model.AuthResult
	if err := c.post(ctx, "", "/auth/login", req, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("%w: login: empty token", ErrMalformedResponse)
	}
	return &result, nil
}

// Register creates an account, optionally under a referral code
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResult, error) {
	var result model.AuthResult
	if err := c.post(ctx, "", "/auth/register", req, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("%w: register: empty token", ErrMalformedResponse)
	}
	return &result, nil
}

// Me fetches the identity behind token
func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	if err := c.get(ctx, token, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes token on the backend
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.post(ctx, token, "/auth/logout", nil, nil)
}
