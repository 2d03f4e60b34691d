package handlers

import (
	"encoding/json"
	"net/http"

	"accountive-server/middleware"
	"accountive-server/models"
	"accountive-server/services"
	"accountive-server/utils/errors"
)

type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

func (h *GroupHandler) CreateFriendGroup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name    string                        `json:"name"`
		Friends map[string]models.FriendEntry `json:"friends"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	group, err := h.groupService.CreateFriendGroup(r.Context(), input.Name, input.Friends)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(group)
}

func (h *GroupHandler) GetFriendGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.GetFriendGroups(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if groups == nil {
		groups = []models.FriendGroup{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"groups": groups, "count": len(groups)})
}

func (h *GroupHandler) UpdateFriendGroup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		GroupID string                        `json:"group_id"`
		Name    string                        `json:"name"`
		Friends map[string]models.FriendEntry `json:"friends"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.groupService.UpdateFriendGroup(r.Context(), input.GroupID, input.Name, input.Friends); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Group updated"})
}

func (h *GroupHandler) DeleteFriendGroup(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group_id")
	if groupID == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.groupService.DeleteFriendGroup(r.Context(), groupID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Group deleted"})
}
