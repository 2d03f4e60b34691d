package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"accountive-server/models"
	"accountive-server/utils/errors"
)

// GroupService manages friend groups, the named friend subsets that scope
// completion fan-out for individual activities.
type GroupService struct {
	collection *mongo.Collection
	activities bulkUpdater
}

func NewGroupService(store *Store) *GroupService {
	return &GroupService{
		collection: store.Collection("groups"),
		activities: store.Collection("activities"),
	}
}

func (s *GroupService) CreateFriendGroup(ctx context.Context, name string, members map[string]models.FriendEntry) (models.FriendGroup, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return models.FriendGroup{}, errors.ErrUnauthorized
	}
	if name == "" {
		return models.FriendGroup{}, errors.ErrInvalidInput
	}
	if members == nil {
		members = map[string]models.FriendEntry{}
	}

	group := models.FriendGroup{
		ID:      uuid.New().String(),
		Owner:   userID,
		Name:    name,
		Friends: members,
	}
	if _, err := s.collection.InsertOne(ctx, group); err != nil {
		log.Printf("Failed to create friend group: %v", err)
		return models.FriendGroup{}, err
	}
	return group, nil
}

// GetFriendGroup loads a single group by id, regardless of owner. Used by
// completion fan-out to resolve an activity's recipient scope.
func (s *GroupService) GetFriendGroup(ctx context.Context, groupID string) (models.FriendGroup, error) {
	var group models.FriendGroup
	err := s.collection.FindOne(ctx, bson.M{"_id": groupID}).Decode(&group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.FriendGroup{}, errors.ErrNotFound
		}
		return models.FriendGroup{}, err
	}
	return group, nil
}

func (s *GroupService) GetFriendGroups(ctx context.Context) ([]models.FriendGroup, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return nil, errors.ErrUnauthorized
	}
	cursor, err := s.collection.Find(ctx, bson.M{"owner": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []models.FriendGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *GroupService) UpdateFriendGroup(ctx context.Context, groupID, name string, members map[string]models.FriendEntry) error {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return errors.ErrUnauthorized
	}
	update := bson.M{}
	if name != "" {
		update["group_name"] = name
	}
	if members != nil {
		update["friends"] = members
	}
	if len(update) == 0 {
		return nil
	}
	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": groupID, "owner": userID}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// DeleteFriendGroup removes a group and clears the reference on every
// activity that pointed at it. The activities themselves are kept.
func (s *GroupService) DeleteFriendGroup(ctx context.Context, groupID string) error {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return errors.ErrUnauthorized
	}
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": groupID, "owner": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errors.ErrNotFound
	}

	return s.clearGroupRefs(ctx, userID, groupID)
}

// clearGroupRefs blanks the group reference on every activity of the
// owner that pointed at the group. Nothing else on the activity changes.
func (s *GroupService) clearGroupRefs(ctx context.Context, userID, groupID string) error {
	cleared, err := s.activities.UpdateMany(ctx,
		bson.M{"uid": userID, "friendGroupId": groupID},
		bson.M{"$set": bson.M{"friendGroupId": ""}},
	)
	if err != nil {
		log.Printf("Failed to clear group %s from activities: %v", groupID, err)
		return fmt.Errorf("Failed to clear group references")
	}
	if cleared.ModifiedCount > 0 {
		log.Printf("Cleared group %s from %d activities", groupID, cleared.ModifiedCount)
	}
	return nil
}
