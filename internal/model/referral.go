package model

import "time"

// ReferralInfo is the caller's referral program summary
type ReferralInfo struct {
	Code           string `json:"code"`
	Link           string `json:"link"`
	BonusPoints    int64  `json:"bonus_points"`
	ReferralsCount int    `json:"referrals_count"`
	EarnedPoints   int64  `json:"earned_points"`
}

// Referral is a user who registered with the caller's code (filleul)
type Referral struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Earned   int64     `json:"earned_points"`
	JoinedAt time.Time `json:"joined_at"`
}
