package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"accountive-server/middleware"
	"accountive-server/models"
	"accountive-server/services"
	"accountive-server/utils/errors"
)

type ActivityHandler struct {
	activityService *services.ActivityService
}

type ActivitiesResponse struct {
	Activities []models.Activity `json:"activities"`
	Count      int               `json:"count"`
}

func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) AddActivity(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title         string   `json:"title"`
		Description   string   `json:"description"`
		FriendGroupID string   `json:"friend_group_id"`
		Days          []string `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	activities, err := h.activityService.AddActivity(r.Context(), input.Title, input.Description, input.FriendGroupID, input.Days)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ActivitiesResponse{Activities: activities, Count: len(activities)})
}

func (h *ActivityHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")

	var activities []models.Activity
	var err error
	if day == "" {
		activities, err = h.activityService.GetAllActivities(r.Context())
	} else {
		activities, err = h.activityService.GetActivitiesByDay(r.Context(), day)
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ActivitiesResponse{Activities: activities, Count: len(activities)})
}

func (h *ActivityHandler) GetDoneCount(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	if day == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	count, err := h.activityService.GetDoneCount(r.Context(), day)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"done_count": count})
}

func (h *ActivityHandler) MarkActivityDone(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ActivityID string `json:"activity_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.activityService.MarkActivityDone(r.Context(), input.ActivityID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Activity marked done"})
}

func (h *ActivityHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ActivityID    string   `json:"activity_id"`
		Title         string   `json:"title"`
		Description   string   `json:"description"`
		FriendGroupID string   `json:"friend_group_id"`
		Days          []string `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if len(input.Days) == 0 {
		// No day change: edit the single occurrence in place
		if err := h.activityService.UpdateActivityByDay(r.Context(), input.ActivityID, input.Title, input.Description, input.FriendGroupID); err != nil {
			middleware.WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Activity updated"})
		return
	}

	activity := models.Activity{
		ID:            input.ActivityID,
		Title:         input.Title,
		Description:   input.Description,
		FriendGroupID: input.FriendGroupID,
	}
	activities, err := h.activityService.UpdateActivity(r.Context(), activity, input.Days)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ActivitiesResponse{Activities: activities, Count: len(activities)})
}

func (h *ActivityHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	activityID := r.URL.Query().Get("activity_id")
	if activityID == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	deleted, err := h.activityService.DeleteActivity(r.Context(), activityID, all)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted_ids": deleted, "count": len(deleted)})
}
