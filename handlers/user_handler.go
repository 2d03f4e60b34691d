package handlers

import (
	"encoding/json"
	"net/http"

	"accountive-server/middleware"
	"accountive-server/services"
	"accountive-server/utils/errors"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, errors.ErrNotFound)
		return
	}
	user.PasswordHash = ""

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (h *UserHandler) UpdateFcmToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	var input struct {
		FcmToken string `json:"fcm_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.userService.UpdateFcmToken(r.Context(), userID, input.FcmToken); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Token updated"})
}

func (h *UserHandler) GetSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	days, err := h.userService.GetSubscriptions(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if days == nil {
		days = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"days_subscribed": days})
}

// UpdateCounts stores the client-computed progress counters shown on the
// home screen.
func (h *UserHandler) UpdateCounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	var input struct {
		DoneCount  *int `json:"done_count"`
		TotalCount *int `json:"total_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if input.DoneCount != nil {
		if err := h.userService.UpdateDoneCount(r.Context(), userID, *input.DoneCount); err != nil {
			middleware.WriteError(w, err)
			return
		}
	}
	if input.TotalCount != nil {
		if err := h.userService.UpdateTotalCount(r.Context(), userID, *input.TotalCount); err != nil {
			middleware.WriteError(w, err)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Counts updated"})
}

func (h *UserHandler) GetHasShownInstructions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	shown, err := h.userService.GetHasShownInstructions(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"has_shown_instructions": shown})
}

func (h *UserHandler) SetHasShownInstructions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	var input struct {
		HasShownInstructions bool `json:"has_shown_instructions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.userService.SetHasShownInstructions(r.Context(), userID, input.HasShownInstructions); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Instructions flag updated"})
}
