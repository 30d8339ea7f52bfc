package handler

import (
	"context"
	"net/http"

	"go.mau.fi/whatsmeow/types"

	"whatsapp-boost/pkg/logger"
)

// GroupLister lists the groups the bot account belongs to
type GroupLister interface {
	GetJoinedGroups(ctx context.Context) ([]*types.GroupInfo, error)
}

// GroupsHandler handles group-related requests
type GroupsHandler struct {
	groups GroupLister
	logger *logger.Logger
}

// NewGroupsHandler creates a new groups handler
func NewGroupsHandler(groups GroupLister, log *logger.Logger) *GroupsHandler {
	return &GroupsHandler{
		groups: groups,
		logger: log,
	}
}

// GroupInfo represents group information for API response.
// The JID is what LOTTERY_ANNOUNCE_GROUP_JID expects.
type GroupInfo struct {
	JID          string `json:"jid"`
	Name         string `json:"name"`
	Topic        string `json:"topic,omitempty"`
	Participants int    `json:"participants"`
	IsAnnounce   bool   `json:"is_announce"`
}

// ListGroups handles GET /api/v1/groups
func (h *GroupsHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.GetJoinedGroups(r.Context())
	if err != nil {
		h.logger.Error("Failed to get joined groups", "error", err)
		sendErrorResponse(w, "ERR_WHATSAPP", "Failed to retrieve groups", http.StatusServiceUnavailable)
		return
	}

	groupsList := make([]GroupInfo, 0, len(groups))
	for _, group := range groups {
		groupsList = append(groupsList, GroupInfo{
			JID:          group.JID.String(),
			Name:         group.Name,
			Topic:        group.Topic,
			Participants: len(group.Participants),
			IsAnnounce:   group.IsAnnounce,
		})
	}

	h.logger.Info("Groups list retrieved", "total", len(groupsList))
	sendSuccessResponse(w, http.StatusOK, "Groups retrieved successfully", groupsList)
}
