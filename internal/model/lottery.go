package model

import "time"

// RoundStatus represents the lifecycle state of a "Grande Roue" round
type RoundStatus string

const (
	RoundOpen      RoundStatus = "open"
	RoundDrawn     RoundStatus = "drawn"
	RoundCancelled RoundStatus = "cancelled"
)

// LotteryRound is a scheduled draw
type LotteryRound struct {
	ID          string      `json:"id"`
	Status      RoundStatus `json:"status"`
	DrawAt      time.Time   `json:"draw_at"`
	TicketPrice int64       `json:"ticket_price"`
	PrizePool   int64       `json:"prize_pool"`
	TicketsSold int64       `json:"tickets_sold"`
	WinnerName  string      `json:"winner_name,omitempty"`
	Prize       string      `json:"prize,omitempty"`
}

// LotteryTicket is a ticket bought for a round
type LotteryTicket struct {
	ID          string    `json:"id"`
	RoundID     string    `json:"round_id"`
	Number      string    `json:"number"`
	Won         bool      `json:"won"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// BuyTicketsRequest represents POST /lottery/tickets
type BuyTicketsRequest struct {
	RoundID  string `json:"round_id"`
	Quantity int    `json:"quantity"`
}
