package services

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"accountive-server/models"
	"accountive-server/utils/errors"
)

// Register creates a new user record, reserving the username. The device
// token may be empty when the device has not registered for push yet.
func (s *UserService) Register(ctx context.Context, username, email, name, password, fcmToken string) (string, error) {
	// Reserve the username; an existing reservation means it is taken
	_, err := s.usernames.InsertOne(ctx, bson.M{"_id": username})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", errors.NewAPIError("USERNAME_TAKEN", "Username is already in use", http.StatusConflict)
		}
		return "", errors.Wrap(err, "DB_ERROR", "failed to reserve username", http.StatusInternalServerError)
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "HASH_ERROR", "failed to hash password", http.StatusInternalServerError)
	}

	user := models.User{
		PublicID:       uuid.New().String(),
		Username:       username,
		Email:          email,
		Name:           name,
		PasswordHash:   string(passwordHash),
		FcmToken:       fcmToken,
		DaysSubscribed: []string{},
	}

	// Insert into MongoDB
	_, err = s.collection.InsertOne(ctx, user)
	if err != nil {
		// Roll the reservation back so the name is not orphaned
		s.usernames.DeleteOne(ctx, bson.M{"_id": username})
		return "", errors.Wrap(err, "DB_ERROR", "failed to create user in database", http.StatusInternalServerError)
	}

	s.cacheUser(ctx, user)
	return user.PublicID, nil
}

// Login authenticates a user, refreshes the stored device token and
// returns a JWT
func (s *UserService) Login(ctx context.Context, username, password, fcmToken string) (string, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return "", errors.ErrNotFound
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errors.NewAPIError("INVALID_CREDENTIALS", "Invalid username or password", http.StatusUnauthorized)
	}

	// Refresh the device token on every login
	if fcmToken != "" && fcmToken != user.FcmToken {
		if err := s.UpdateFcmToken(ctx, user.PublicID, fcmToken); err != nil {
			return "", errors.Wrap(err, "DB_ERROR", "Failed to update device token", http.StatusInternalServerError)
		}
		user.FcmToken = fcmToken
	}

	// Generate JWT
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID":   user.PublicID,
		"username": user.Username,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", errors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}

	s.cacheUser(ctx, user)
	return tokenString, nil
}
