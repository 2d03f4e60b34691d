package handlers

import (
	"encoding/json"
	"net/http"

	"accountive-server/middleware"
	"accountive-server/services"
	"accountive-server/utils/errors"
)

// DispatchHandler exposes the notification dispatch functions. Every
// route sits behind the JWT middleware; an unauthenticated request never
// reaches the push channel.
type DispatchHandler struct {
	dispatchService *services.DispatchService
}

func NewDispatchHandler(dispatchService *services.DispatchService) *DispatchHandler {
	return &DispatchHandler{dispatchService: dispatchService}
}

func (h *DispatchHandler) NotifyIndividual(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.Context().Value("userID").(string); !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	var input struct {
		FcmKey string `json:"fcmKey"`
		Body   string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.dispatchService.NotifyIndividual(r.Context(), input.FcmKey, input.Body); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "user notified"})
}

func (h *DispatchHandler) NotifyFriends(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.Context().Value("userID").(string); !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	var input struct {
		FcmTokens []string `json:"fcmTokens"`
		Body      string   `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.dispatchService.NotifyFriends(r.Context(), input.FcmTokens, input.Body); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "notified friends!"})
}

func (h *DispatchHandler) SubscribeToDays(w http.ResponseWriter, r *http.Request) {
	h.updateTopics(w, r, true)
}

func (h *DispatchHandler) UnsubscribeFromDays(w http.ResponseWriter, r *http.Request) {
	h.updateTopics(w, r, false)
}

func (h *DispatchHandler) updateTopics(w http.ResponseWriter, r *http.Request, subscribe bool) {
	if _, ok := r.Context().Value("userID").(string); !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	var input struct {
		FcmKey string   `json:"fcmKey"`
		Days   []string `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	var err error
	message := "subscribed!"
	if subscribe {
		err = h.dispatchService.SubscribeToDays(r.Context(), input.FcmKey, input.Days)
	} else {
		err = h.dispatchService.UnsubscribeFromDays(r.Context(), input.FcmKey, input.Days)
		message = "unsubscribed!"
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func (h *DispatchHandler) DeleteUserActivities(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.Context().Value("userID").(string); !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	if err := h.dispatchService.DeleteUserActivities(r.Context()); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
