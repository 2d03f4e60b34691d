package services

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"accountive-server/models"
	"accountive-server/utils/errors"
)

// FriendService maintains the bidirectional relationship documents and
// triggers the best-effort notifications that friend actions produce.
type FriendService struct {
	collection *mongo.Collection
	users      *UserService
	dispatch   *DispatchService
}

func NewFriendService(store *Store, users *UserService, dispatch *DispatchService) *FriendService {
	return &FriendService{
		collection: store.Collection("requests"),
		users:      users,
		dispatch:   dispatch,
	}
}

func (s *FriendService) getDoc(ctx context.Context, userID string) (models.RelationshipDoc, error) {
	var doc models.RelationshipDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.RelationshipDoc{ID: userID}, nil
		}
		return models.RelationshipDoc{}, err
	}
	return doc, nil
}

// GetFriends returns the caller's confirmed relationships.
func (s *FriendService) GetFriends(ctx context.Context) ([]models.Friend, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return nil, errors.ErrUnauthorized
	}
	doc, err := s.getDoc(ctx, userID)
	if err != nil {
		return nil, err
	}
	return entriesToFriends(doc.Friends, models.StatusFriend), nil
}

// GetFriendRequests returns incoming requests awaiting the caller's answer.
func (s *FriendService) GetFriendRequests(ctx context.Context) ([]models.Friend, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return nil, errors.ErrUnauthorized
	}
	doc, err := s.getDoc(ctx, userID)
	if err != nil {
		return nil, err
	}
	return entriesToFriends(doc.FriendRequests, ""), nil
}

// GetOwnRequests returns the caller's outgoing pending requests.
func (s *FriendService) GetOwnRequests(ctx context.Context) ([]models.Friend, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return nil, errors.ErrUnauthorized
	}
	doc, err := s.getDoc(ctx, userID)
	if err != nil {
		return nil, err
	}
	return entriesToFriends(doc.OwnRequests, ""), nil
}

func entriesToFriends(entries map[string]models.FriendEntry, overrideStatus string) []models.Friend {
	friends := make([]models.Friend, 0, len(entries))
	for uid, entry := range entries {
		status := entry.Status
		if overrideStatus != "" {
			status = overrideStatus
		}
		friends = append(friends, models.Friend{
			UserID:   uid,
			Name:     entry.Name,
			Username: entry.Username,
			Status:   status,
		})
	}
	return friends
}

// SendFriendRequest records a pending request on both sides and notifies
// the recipient's device, if it has one.
func (s *FriendService) SendFriendRequest(ctx context.Context, recipientID string) error {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return errors.ErrUnauthorized
	}
	if userID == recipientID {
		return errors.ErrInvalidInput
	}

	// Verify users exist
	sender, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("Sender not found")
	}
	recipient, err := s.users.GetUser(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("Recipient not found")
	}

	doc, err := s.getDoc(ctx, userID)
	if err != nil {
		return err
	}
	if _, already := doc.Friends[recipientID]; already {
		return fmt.Errorf("Already friends")
	}
	if _, pending := doc.OwnRequests[recipientID]; pending {
		return fmt.Errorf("Already pending friend request")
	}

	pendingRecipient := models.FriendEntry{Name: recipient.Name, Username: recipient.Username, Status: models.StatusPending}
	pendingSender := models.FriendEntry{Name: sender.Name, Username: sender.Username, Status: models.StatusPending}

	opts := options.Update().SetUpsert(true)
	_, err = s.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"ownRequests." + recipientID: pendingRecipient},
	}, opts)
	if err != nil {
		log.Printf("Failed to record outgoing friend request: %v", err)
		return fmt.Errorf("Failed to send friend request")
	}
	_, err = s.collection.UpdateOne(ctx, bson.M{"_id": recipientID}, bson.M{
		"$set": bson.M{"friendRequests." + userID: pendingSender},
	}, opts)
	if err != nil {
		log.Printf("Failed to record incoming friend request: %v", err)
		return fmt.Errorf("Failed to send friend request")
	}

	log.Printf("Friend request sent from %s to %s", sender.Username, recipient.Username)

	// Best-effort notification; an unregistered device is a silent skip
	if recipient.FcmToken != "" {
		body := fmt.Sprintf("%s sent you a friend request!", sender.Username)
		if err := s.dispatch.NotifyIndividual(context.WithoutCancel(ctx), recipient.FcmToken, body); err != nil {
			log.Printf("Failed to notify %s of friend request: %v", recipient.Username, err)
		}
	}
	return nil
}

// AcceptFriendRequest promotes a pending request to a confirmed
// relationship. Both relationship documents are updated in one session
// transaction so a reader never sees only one side befriended.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, senderID string) error {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return errors.ErrUnauthorized
	}
	if userID == senderID {
		return fmt.Errorf("Cannot accept friend request from self")
	}

	sender, err := s.users.GetUser(ctx, senderID)
	if err != nil {
		return fmt.Errorf("Sender not found")
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("User not found")
	}

	// Check if there is a pending friend request
	err = s.collection.FindOne(ctx, bson.M{
		"_id": userID,
		"friendRequests." + senderID: bson.M{"$exists": true},
	}).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("No pending friend request from %s to %s", sender.Username, user.Username)
		}
		log.Printf("Failed to check pending friend request: %v", err)
		return fmt.Errorf("Failed to check pending friend request")
	}

	senderEntry := models.FriendEntry{Name: sender.Name, Username: sender.Username, Status: models.StatusFriend}
	userEntry := models.FriendEntry{Name: user.Name, Username: user.Username, Status: models.StatusFriend}

	session, err := s.collection.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("Failed to accept friend request")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		opts := options.Update().SetUpsert(true)
		_, err := s.collection.UpdateOne(sc, bson.M{"_id": userID}, bson.M{
			"$set":   bson.M{"friends." + senderID: senderEntry},
			"$unset": bson.M{"friendRequests." + senderID: ""},
		}, opts)
		if err != nil {
			return nil, err
		}
		_, err = s.collection.UpdateOne(sc, bson.M{"_id": senderID}, bson.M{
			"$set":   bson.M{"friends." + userID: userEntry},
			"$unset": bson.M{"ownRequests." + userID: ""},
		}, opts)
		return nil, err
	})
	if err != nil {
		log.Printf("Failed to accept friend request: %v", err)
		return fmt.Errorf("Failed to accept friend request")
	}

	log.Printf("%s and %s are now friends", user.Username, sender.Username)

	// Best-effort notification back to the requester
	if sender.FcmToken != "" {
		body := fmt.Sprintf("%s accepted your friend request!", user.Username)
		if err := s.dispatch.NotifyIndividual(context.WithoutCancel(ctx), sender.FcmToken, body); err != nil {
			log.Printf("Failed to notify %s of accepted request: %v", sender.Username, err)
		}
	}
	return nil
}

// DeclineFriendRequest drops an incoming request from both sides.
func (s *FriendService) DeclineFriendRequest(ctx context.Context, senderID string) error {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return errors.ErrUnauthorized
	}
	return s.removePair(ctx, userID, "friendRequests", senderID, "ownRequests")
}

// CancelOwnRequest withdraws an outgoing request from both sides.
func (s *FriendService) CancelOwnRequest(ctx context.Context, recipientID string) error {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return errors.ErrUnauthorized
	}
	return s.removePair(ctx, userID, "ownRequests", recipientID, "friendRequests")
}

// RemoveFriend deletes a confirmed relationship from both sides.
func (s *FriendService) RemoveFriend(ctx context.Context, friendID string) error {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return errors.ErrUnauthorized
	}
	return s.removePair(ctx, userID, "friends", friendID, "friends")
}

func (s *FriendService) removePair(ctx context.Context, userID, userField, otherID, otherField string) error {
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$unset": bson.M{userField + "." + otherID: ""},
	})
	if err != nil {
		log.Printf("Failed to update %s for user %s: %v", userField, userID, err)
		return err
	}
	_, err = s.collection.UpdateOne(ctx, bson.M{"_id": otherID}, bson.M{
		"$unset": bson.M{otherField + "." + userID: ""},
	})
	if err != nil {
		log.Printf("Failed to update %s for user %s: %v", otherField, otherID, err)
		return err
	}
	return nil
}

// SearchUsers finds addable users by username prefix, excluding existing
// friends and users with an incoming request pending; the caller's own
// outgoing requests are annotated with their pending status.
func (s *FriendService) SearchUsers(ctx context.Context, query string) ([]models.Friend, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return nil, errors.ErrUnauthorized
	}

	doc, err := s.getDoc(ctx, userID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.users.SearchUsers(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	var results []models.Friend
	for _, candidate := range candidates {
		if _, isFriend := doc.Friends[candidate.PublicID]; isFriend {
			continue
		}
		if _, incoming := doc.FriendRequests[candidate.PublicID]; incoming {
			continue
		}
		status := ""
		if entry, outgoing := doc.OwnRequests[candidate.PublicID]; outgoing {
			status = entry.Status
		}
		results = append(results, models.Friend{
			UserID:   candidate.PublicID,
			Name:     candidate.Name,
			Username: candidate.Username,
			Status:   status,
		})
	}
	return results, nil
}

// DeleteRelationships removes a departing user's relationship document.
func (s *FriendService) DeleteRelationships(ctx context.Context, userID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": userID})
	return err
}
