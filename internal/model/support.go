package model

import "time"

// TicketStatus is the state of a support ticket
type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketAnswered TicketStatus = "answered"
	TicketClosed   TicketStatus = "closed"
)

// SupportTicket is a user support request
type SupportTicket struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id,omitempty"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    TicketStatus  `json:"status"`
	Replies   []TicketReply `json:"replies,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// TicketReply is an answer posted on a ticket
type TicketReply struct {
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTicketRequest represents POST /support/tickets
type CreateTicketRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}
