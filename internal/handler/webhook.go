package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"whatsapp-boost/internal/model"
	"whatsapp-boost/pkg/logger"
)

// MessageHandler consumes chat messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg model.IncomingMessage)
}

// WebhookHandler injects chat messages into the bot without going through WhatsApp
type WebhookHandler struct {
	bot         MessageHandler
	allowedJIDs map[string]bool
	logger      *logger.Logger
}

// NewWebhookHandler creates a new webhook handler. A non-empty allowedJIDs
// restricts injection to the same chats WhatsApp delivery accepts.
func NewWebhookHandler(bot MessageHandler, allowedJIDs []string, log *logger.Logger) *WebhookHandler {
	allowed := make(map[string]bool, len(allowedJIDs))
	for _, jid := range allowedJIDs {
		allowed[jid] = true
	}

	return &WebhookHandler{
		bot:         bot,
		allowedJIDs: allowed,
		logger:      log,
	}
}

// ReceiveMessage handles POST /api/v1/webhook/message.
// Replies are still delivered to the chat over WhatsApp.
func (h *WebhookHandler) ReceiveMessage(w http.ResponseWriter, r *http.Request) {
	var msg model.IncomingMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&msg); err != nil {
		sendErrorResponse(w, "ERR_INVALID_BODY", "Invalid JSON body", http.StatusBadRequest)
		return
	}

	msg.Chat = strings.TrimSpace(msg.Chat)
	if msg.Chat == "" || strings.TrimSpace(msg.Text) == "" {
		sendErrorResponse(w, "ERR_MISSING_PARAMETER", "chat and text are required", http.StatusBadRequest)
		return
	}
	if len(h.allowedJIDs) > 0 && !h.allowedJIDs[msg.Chat] {
		h.logger.Warn("Injected message for non-allowed JID refused",
			"jid", msg.Chat,
			"remote_addr", r.RemoteAddr,
		)
		sendErrorResponse(w, "ERR_FORBIDDEN", "chat is not allowed", http.StatusForbidden)
		return
	}
	if msg.From == "" {
		msg.From, _, _ = strings.Cut(msg.Chat, "@")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	h.logger.WithChat(msg.Chat).Info("Injected message received",
		"remote_addr", r.RemoteAddr,
	)

	go h.bot.HandleMessage(context.Background(), msg)

	sendSuccessResponse(w, http.StatusAccepted, "Message queued", nil)
}
