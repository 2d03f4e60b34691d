package handlers

import (
	"encoding/json"
	"net/http"

	"accountive-server/middleware"
	"accountive-server/services"
	"accountive-server/utils/errors"
)

type AuthHandler struct {
	userService   *services.UserService
	friendService *services.FriendService
}

func NewAuthHandler(userService *services.UserService, friendService *services.FriendService) *AuthHandler {
	return &AuthHandler{userService: userService, friendService: friendService}
}

func (h *AuthHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		FcmToken string `json:"fcm_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if input.Username == "" || input.Email == "" || input.Password == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	userID, err := h.userService.Register(r.Context(), input.Username, input.Email, input.Name, input.Password, input.FcmToken)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"userID": userID})
}

func (h *AuthHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
		FcmToken string `json:"fcm_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	token, err := h.userService.Login(r.Context(), input.Username, input.Password, input.FcmToken)
	if err != nil {
		middleware.WriteError(w, errors.Wrap(err, "LOGIN_ERROR", "Failed to login user", http.StatusUnauthorized))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// DeleteAccount removes the caller's user record and relationship
// document. Activity cleanup is left to the server-side bulk-delete
// extension point.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), userID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := h.friendService.DeleteRelationships(r.Context(), userID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
