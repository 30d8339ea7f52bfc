package handler

import (
	"net/http"
	"time"

	"whatsapp-boost/internal/config"
	"whatsapp-boost/internal/deposit"
	"whatsapp-boost/pkg/logger"
)

// ConnectionStatus reports the chat transport state
type ConnectionStatus interface {
	GetConnectionStatus() map[string]interface{}
}

// SessionCounter counts stored chat sessions
type SessionCounter interface {
	Count() (int64, error)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	whatsapp  ConnectionStatus
	sessions  SessionCounter
	registry  *deposit.Registry
	config    *config.Config
	logger    *logger.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(wa ConnectionStatus, sessions SessionCounter, registry *deposit.Registry, cfg *config.Config, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		whatsapp:  wa,
		sessions:  sessions,
		registry:  registry,
		config:    cfg,
		logger:    log,
		startTime: time.Now(),
	}
}

// CheckHealth handles GET /health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.Count()
	if err != nil {
		h.logger.Error("Failed to count sessions", "error", err)
		sessions = -1
	}

	active := 0
	for _, snap := range h.registry.List() {
		if !snap.State.Final() {
			active++
		}
	}

	response := map[string]interface{}{
		"status":   "healthy",
		"whatsapp": h.whatsapp.GetConnectionStatus(),
		"backend": map[string]interface{}{
			"url": h.config.Backend.BaseURL,
		},
		"sessions":        sessions,
		"active_deposits": active,
		"uptime":          time.Since(h.startTime).Round(time.Second).String(),
		"timestamp":       time.Now().Format(time.RFC3339),
	}

	sendSuccessResponse(w, http.StatusOK, "Service is healthy", response)
}
