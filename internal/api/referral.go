package api

import (
	"context"

	"whatsapp-boost/internal/model"
)

// Referral fetches the caller's referral summary
func (c *Client) Referral(ctx context.Context, token string) (*model.ReferralInfo, error) {
	var info model.ReferralInfo
	if err := c.get(ctx, token, "/referral", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Referrals lists users registered with the caller's code
func (c *Client) Referrals(ctx context.Context, token string) ([]model.Referral, error) {
	var referrals []model.Referral
	if err := c.get(ctx, token, "/referral/filleuls", &referrals); err != nil {
		return nil, err
	}
	return referrals, nil
}
