package model

import (
	"strings"
	"time"
)

// IncomingMessage represents a chat message received from WhatsApp
type IncomingMessage struct {
	MessageID string    `json:"message_id"`
	Chat      string    `json:"chat"`
	From      string    `json:"from"`
	FromName  string    `json:"from_name"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Command splits a "/cmd arg1 arg2" message into its lowercased command and arguments.
// Messages without a leading slash yield an empty command.
func (m IncomingMessage) Command() (string, []string) {
	text := strings.TrimSpace(m.Text)
	if !strings.HasPrefix(text, "/") {
		return "", nil
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}
