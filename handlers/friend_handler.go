package handlers

import (
	"encoding/json"
	"net/http"

	"accountive-server/middleware"
	"accountive-server/models"
	"accountive-server/services"
	"accountive-server/utils/errors"
)

type FriendHandler struct {
	friendService *services.FriendService
}

type FriendsResponse struct {
	Friends []models.Friend `json:"friends"`
	Count   int             `json:"count"`
}

func NewFriendHandler(friendService *services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.friendService.GetFriends(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeFriends(w, friends)
}

func (h *FriendHandler) GetFriendRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.friendService.GetFriendRequests(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeFriends(w, requests)
}

func (h *FriendHandler) GetOwnRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.friendService.GetOwnRequests(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeFriends(w, requests)
}

func (h *FriendHandler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RecipientID string `json:"recipient_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.friendService.SendFriendRequest(r.Context(), input.RecipientID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Friend request sent"})
}

func (h *FriendHandler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SenderID string `json:"sender_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.friendService.AcceptFriendRequest(r.Context(), input.SenderID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Friend request accepted"})
}

func (h *FriendHandler) DeclineFriendRequest(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SenderID string `json:"sender_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.friendService.DeclineFriendRequest(r.Context(), input.SenderID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Friend request declined"})
}

func (h *FriendHandler) CancelOwnRequest(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RecipientID string `json:"recipient_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.friendService.CancelOwnRequest(r.Context(), input.RecipientID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Friend request cancelled"})
}

func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FriendID string `json:"friend_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.friendService.RemoveFriend(r.Context(), input.FriendID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Friend removed"})
}

func (h *FriendHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := h.friendService.SearchUsers(r.Context(), query)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeFriends(w, results)
}

func writeFriends(w http.ResponseWriter, friends []models.Friend) {
	if friends == nil {
		friends = []models.Friend{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FriendsResponse{Friends: friends, Count: len(friends)})
}
