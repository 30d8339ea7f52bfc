package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"whatsapp-boost/internal/deposit"
	"whatsapp-boost/pkg/logger"
)

// DepositsHandler exposes running and recent deposit polling tasks to operators
type DepositsHandler struct {
	registry *deposit.Registry
	logger   *logger.Logger
}

// NewDepositsHandler creates a new deposits handler
func NewDepositsHandler(registry *deposit.Registry, log *logger.Logger) *DepositsHandler {
	return &DepositsHandler{
		registry: registry,
		logger:   log,
	}
}

// ListDeposits handles GET /api/v1/deposits
func (h *DepositsHandler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	snapshots := h.registry.List()
	if snapshots == nil {
		snapshots = []deposit.Snapshot{}
	}
	sendSuccessResponse(w, http.StatusOK, "Deposits retrieved successfully", snapshots)
}

// GetDeposit handles GET /api/v1/deposits/{externalID}
func (h *DepositsHandler) GetDeposit(w http.ResponseWriter, r *http.Request) {
	task, ok := h.registry.Get(chi.URLParam(r, "externalID"))
	if !ok {
		sendErrorResponse(w, "ERR_DEPOSIT_NOT_FOUND", "Deposit not found", http.StatusNotFound)
		return
	}
	sendSuccessResponse(w, http.StatusOK, "Deposit retrieved successfully", task.Snapshot())
}

// CancelDeposit handles DELETE /api/v1/deposits/{externalID}.
// Only local polling stops; the payment itself is left to the backend.
func (h *DepositsHandler) CancelDeposit(w http.ResponseWriter, r *http.Request) {
	externalID := chi.URLParam(r, "externalID")

	task, ok := h.registry.Get(externalID)
	if !ok {
		sendErrorResponse(w, "ERR_DEPOSIT_NOT_FOUND", "Deposit not found", http.StatusNotFound)
		return
	}

	task.Cancel()
	h.logger.WithExternalID(externalID).Info("Deposit polling cancelled by operator")
	sendSuccessResponse(w, http.StatusOK, "Deposit polling stopped", task.Snapshot())
}
