package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"accountive-server/models"
	"accountive-server/utils/errors"
)

const userCacheTTL = 24 * time.Hour

type UserService struct {
	collection  *mongo.Collection
	usernames   *mongo.Collection
	redisClient *redis.Client
	jwtSecret   string
}

// userIndexModels declares one unique index per identity field. Username
// uniqueness is also enforced by the reservation collection at register
// time; the index here backs it at the record level and covers email.
func userIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
}

func NewUserService(store *Store, jwtSecret string) *UserService {
	collection := store.Collection("uids")

	_, err := collection.Indexes().CreateMany(context.Background(), userIndexModels())
	if err != nil {
		log.Printf("Failed to create unique indexes on users: %v", err)
	}

	return &UserService{
		collection:  collection,
		usernames:   store.Collection("usernames"),
		redisClient: store.RedisClient,
		jwtSecret:   jwtSecret,
	}
}

// GetUser retrieves a user record from Redis or MongoDB
func (s *UserService) GetUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User

	// Check Redis first
	userJSON, err := s.redisClient.Get(ctx, "user:"+userID).Result()
	if err == nil {
		if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
			log.Printf("Failed to unmarshal user %s: %v", userID, err)
		} else {
			return user, nil
		}
	}

	err = s.collection.FindOne(ctx, bson.M{"public_id": bson.M{"$eq": userID}}).Decode(&user)
	if err != nil {
		return models.User{}, err
	}

	s.cacheUser(ctx, user)
	return user, nil
}

func (s *UserService) cacheUser(ctx context.Context, user models.User) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		log.Printf("Failed to marshal user %s: %v", user.PublicID, err)
		return
	}
	s.redisClient.Set(ctx, "user:"+user.PublicID, userJSON, userCacheTTL)
}

func (s *UserService) invalidateUser(ctx context.Context, userID string) {
	s.redisClient.Del(ctx, "user:"+userID)
}

// GetFcmToken returns a user's current device token, "" when the user has
// no registered device.
func (s *UserService) GetFcmToken(ctx context.Context, userID string) (string, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", nil
		}
		return "", err
	}
	return user.FcmToken, nil
}

// GetFcmTokens resolves device tokens for a set of users in one batched
// lookup, dropping users with no registered token.
func (s *UserService) GetFcmTokens(ctx context.Context, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	cursor, err := s.collection.Find(ctx, bson.M{"public_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return collectTokens(users), nil
}

// collectTokens lifts the device tokens out of a user set, skipping
// users with no registered device.
func collectTokens(users []models.User) []string {
	var tokens []string
	for _, user := range users {
		if user.FcmToken != "" {
			tokens = append(tokens, user.FcmToken)
		}
	}
	return tokens
}

// UpdateFcmToken replaces a user's device token, e.g. after a login on a
// new device.
func (s *UserService) UpdateFcmToken(ctx context.Context, userID string, fcmToken string) error {
	_, err := s.collection.UpdateOne(ctx, bson.M{"public_id": userID}, bson.M{
		"$set": bson.M{"fcmToken": fcmToken},
	})
	if err != nil {
		log.Printf("Failed to update fcm token for user %s: %v", userID, err)
		return err
	}
	s.invalidateUser(ctx, userID)
	return nil
}

func (s *UserService) GetUsername(ctx context.Context, userID string) (string, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// AddSubscriptions unions days into the user's subscribed-topics set.
func (s *UserService) AddSubscriptions(ctx context.Context, userID string, days []string) error {
	_, err := s.collection.UpdateOne(ctx, bson.M{"public_id": userID}, bson.M{
		"$addToSet": bson.M{"daysSubscribed": bson.M{"$each": days}},
	})
	if err != nil {
		return err
	}
	s.invalidateUser(ctx, userID)
	return nil
}

// RemoveSubscriptions removes days from the user's subscribed-topics set.
func (s *UserService) RemoveSubscriptions(ctx context.Context, userID string, days []string) error {
	_, err := s.collection.UpdateOne(ctx, bson.M{"public_id": userID}, bson.M{
		"$pull": bson.M{"daysSubscribed": bson.M{"$in": days}},
	})
	if err != nil {
		return err
	}
	s.invalidateUser(ctx, userID)
	return nil
}

func (s *UserService) GetSubscriptions(ctx context.Context, userID string) ([]string, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.DaysSubscribed, nil
}

// UpdateDoneCount stores the caller-computed done counter for the day.
// The value is set absolutely, not incremented, matching the client-side
// counting model; concurrent writers can lose updates.
func (s *UserService) UpdateDoneCount(ctx context.Context, userID string, doneCount int) error {
	return s.setCount(ctx, userID, "doneCount", doneCount)
}

// UpdateTotalCount stores the caller-computed total activity counter.
func (s *UserService) UpdateTotalCount(ctx context.Context, userID string, totalCount int) error {
	return s.setCount(ctx, userID, "totalCount", totalCount)
}

func (s *UserService) setCount(ctx context.Context, userID, field string, value int) error {
	if value < 0 {
		return errors.ErrInvalidInput
	}
	_, err := s.collection.UpdateOne(ctx, bson.M{"public_id": userID}, bson.M{
		"$set": bson.M{field: value},
	})
	if err != nil {
		log.Printf("Failed to update %s for user %s: %v", field, userID, err)
		return err
	}
	s.invalidateUser(ctx, userID)
	return nil
}

func (s *UserService) GetHasShownInstructions(ctx context.Context, userID string) (bool, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.HasShownInstructions, nil
}

func (s *UserService) SetHasShownInstructions(ctx context.Context, userID string, shown bool) error {
	_, err := s.collection.UpdateOne(ctx, bson.M{"public_id": userID}, bson.M{
		"$set": bson.M{"hasShownInstructions": shown},
	})
	if err != nil {
		return err
	}
	s.invalidateUser(ctx, userID)
	return nil
}

// SearchUsers finds users whose username starts with query, excluding the
// caller. Callers filter the result further against their friend graph.
func (s *UserService) SearchUsers(ctx context.Context, query string, excludeUserID string) ([]models.User, error) {
	if query == "" {
		return nil, nil
	}
	filter := bson.M{
		"username":  bson.M{"$gte": query, "$lte": query + "~"},
		"public_id": bson.M{"$ne": excludeUserID},
	}
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes the user record, its username reservation and its
// cache entry. The relationship document is removed by the friend service.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %v", err)
	}
	if _, err := s.collection.DeleteOne(ctx, bson.M{"public_id": userID}); err != nil {
		return err
	}
	if _, err := s.usernames.DeleteOne(ctx, bson.M{"_id": user.Username}); err != nil {
		log.Printf("Failed to release username %s: %v", user.Username, err)
	}
	s.invalidateUser(ctx, userID)
	return nil
}
