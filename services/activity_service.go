package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"accountive-server/models"
	"accountive-server/utils/errors"
)

// userDirectory is the slice of the user service the activity layer
// depends on: name and token lookups plus subscription bookkeeping.
type userDirectory interface {
	GetUsername(ctx context.Context, userID string) (string, error)
	GetFcmToken(ctx context.Context, userID string) (string, error)
	GetFcmTokens(ctx context.Context, userIDs []string) ([]string, error)
	AddSubscriptions(ctx context.Context, userID string, days []string) error
	RemoveSubscriptions(ctx context.Context, userID string, days []string) error
}

type friendLister interface {
	GetFriends(ctx context.Context) ([]models.Friend, error)
}

type groupReader interface {
	GetFriendGroup(ctx context.Context, groupID string) (models.FriendGroup, error)
}

// ActivityService owns the per-user activity records and keeps each
// user's weekday-topic subscriptions in step with the days they have
// activities on. Completion fan-out to friends goes through here too.
type ActivityService struct {
	collection *mongo.Collection
	linkGroups *mongo.Collection
	users      userDirectory
	friends    friendLister
	groups     groupReader
	dispatch   *DispatchService
}

func NewActivityService(store *Store, users *UserService, friends *FriendService, groups *GroupService, dispatch *DispatchService) *ActivityService {
	return &ActivityService{
		collection: store.Collection("activities"),
		linkGroups: store.Collection("linkedActivities"),
		users:      users,
		friends:    friends,
		groups:     groups,
		dispatch:   dispatch,
	}
}

// AddActivity creates one activity record per weekday in days. Multi-day
// adds share a link-group record listing the sibling ids. Afterwards the
// new days are unioned into the user's subscribed topics and one
// subscribe call covering the whole day set is issued to the channel.
func (s *ActivityService) AddActivity(ctx context.Context, title, description, friendGroupID string, days []string) ([]models.Activity, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return nil, errors.ErrUnauthorized
	}
	if title == "" || len(days) == 0 {
		return nil, errors.ErrInvalidInput
	}
	for _, day := range days {
		if !IsWeekday(day) {
			return nil, errors.ErrInvalidInput
		}
	}

	linkGroupID := ""
	if len(days) > 1 {
		linkGroupID = uuid.New().String()
	}

	activities := make([]models.Activity, 0, len(days))
	activityIDs := make([]string, 0, len(days))
	for _, day := range days {
		activity := models.Activity{
			ID:            uuid.New().String(),
			UserID:        userID,
			Title:         title,
			Description:   description,
			Day:           day,
			LinkGroupID:   linkGroupID,
			FriendGroupID: friendGroupID,
		}
		if _, err := s.collection.InsertOne(ctx, activity); err != nil {
			log.Printf("Failed to insert activity for user %s: %v", userID, err)
			return nil, err
		}
		activities = append(activities, activity)
		activityIDs = append(activityIDs, activity.ID)
	}

	if linkGroupID != "" {
		group := models.LinkGroup{ID: linkGroupID, UserID: userID, ActivityIDs: activityIDs}
		if _, err := s.linkGroups.InsertOne(ctx, group); err != nil {
			log.Printf("Failed to insert link group for user %s: %v", userID, err)
			return nil, err
		}
	}

	// Subscription bookkeeping: store set union and channel subscribe are
	// independent writes with no compensation between them
	if err := s.users.AddSubscriptions(ctx, userID, days); err != nil {
		log.Printf("Failed to record subscriptions for user %s: %v", userID, err)
	}
	token, err := s.users.GetFcmToken(ctx, userID)
	if err != nil {
		log.Printf("Failed to resolve token for user %s: %v", userID, err)
	} else if token != "" {
		if err := s.dispatch.SubscribeToDays(context.WithoutCancel(ctx), token, days); err != nil {
			log.Printf("Failed to subscribe user %s to %v: %v", userID, days, err)
		}
	}

	return activities, nil
}

// GetActivitiesByDay lists the caller's activities scheduled on one weekday.
func (s *ActivityService) GetActivitiesByDay(ctx context.Context, day string) ([]models.Activity, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return nil, errors.ErrUnauthorized
	}
	if !IsWeekday(day) {
		return nil, errors.ErrInvalidInput
	}
	return s.findActivities(ctx, bson.M{"uid": userID, "day": day})
}

// GetAllActivities lists every activity the caller owns.
func (s *ActivityService) GetAllActivities(ctx context.Context) ([]models.Activity, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return nil, errors.ErrUnauthorized
	}
	return s.findActivities(ctx, bson.M{"uid": userID})
}

func (s *ActivityService) findActivities(ctx context.Context, filter bson.M) ([]models.Activity, error) {
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var activities []models.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// GetDoneCount counts the caller's completed activities on one weekday.
func (s *ActivityService) GetDoneCount(ctx context.Context, day string) (int, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return 0, errors.ErrUnauthorized
	}
	count, err := s.collection.CountDocuments(ctx, bson.M{"uid": userID, "day": day, "isDone": true})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// UpdateActivityByDay edits a single occurrence in place.
func (s *ActivityService) UpdateActivityByDay(ctx context.Context, activityID, title, description, friendGroupID string) error {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return errors.ErrUnauthorized
	}
	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": activityID, "uid": userID}, bson.M{
		"$set": bson.M{
			"title":         title,
			"description":   description,
			"friendGroupId": friendGroupID,
		},
	})
	if err != nil {
		log.Printf("Failed to update activity %s: %v", activityID, err)
		return err
	}
	if res.MatchedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// UpdateActivity rewrites an activity's day set: every occurrence in its
// link-group is deleted and the activity is re-added for the new days.
// The replacement input is validated up front so a bad request cannot
// delete the existing occurrences without re-adding anything.
func (s *ActivityService) UpdateActivity(ctx context.Context, activity models.Activity, days []string) ([]models.Activity, error) {
	if activity.Title == "" || len(days) == 0 {
		return nil, errors.ErrInvalidInput
	}
	for _, day := range days {
		if !IsWeekday(day) {
			return nil, errors.ErrInvalidInput
		}
	}
	if _, err := s.DeleteActivity(ctx, activity.ID, true); err != nil {
		return nil, err
	}
	return s.AddActivity(ctx, activity.Title, activity.Description, activity.FriendGroupID, days)
}

// MarkActivityDone flips the completion flag from false to true; user
// action never resets it. A completed activity triggers the best-effort
// friend fan-out, which must never fail the mark itself.
func (s *ActivityService) MarkActivityDone(ctx context.Context, activityID string) error {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return errors.ErrUnauthorized
	}

	var activity models.Activity
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": activityID, "uid": userID, "isDone": false},
		bson.M{"$set": bson.M{"isDone": true}},
		opts,
	).Decode(&activity)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Either absent or already done; only the former is an error
			count, countErr := s.collection.CountDocuments(ctx, bson.M{"_id": activityID, "uid": userID})
			if countErr == nil && count > 0 {
				return nil
			}
			return errors.ErrNotFound
		}
		log.Printf("Failed to mark activity %s done: %v", activityID, err)
		return err
	}

	s.notifyCompletion(context.WithoutCancel(ctx), activity)
	return nil
}

// notifyCompletion resolves the recipient set for a completed activity
// and dispatches one multicast. All failures are logged and swallowed.
func (s *ActivityService) notifyCompletion(ctx context.Context, activity models.Activity) {
	username, err := s.users.GetUsername(ctx, activity.UserID)
	if err != nil {
		log.Printf("Failed to resolve username for completion fan-out: %v", err)
		return
	}

	recipientIDs, err := s.resolveRecipients(ctx, activity)
	if err != nil {
		log.Printf("Failed to resolve recipients for activity %s: %v", activity.ID, err)
		return
	}
	tokens, err := s.users.GetFcmTokens(ctx, recipientIDs)
	if err != nil {
		log.Printf("Failed to resolve tokens for activity %s: %v", activity.ID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	if err := s.dispatch.NotifyFriends(ctx, tokens, completionBody(username, activity.Title)); err != nil {
		log.Printf("Failed to notify friends of completed activity %s: %v", activity.ID, err)
	}
}

func completionBody(username, title string) string {
	return fmt.Sprintf("%s completed task \"%s\"!", username, title)
}

// resolveRecipients picks the audience: the full FRIEND-status relation
// set, or only the members of the activity's friend group when set.
func (s *ActivityService) resolveRecipients(ctx context.Context, activity models.Activity) ([]string, error) {
	if activity.FriendGroupID == "" {
		friends, err := s.friends.GetFriends(ctx)
		if err != nil {
			return nil, err
		}
		var ids []string
		for _, friend := range friends {
			if friend.Status == models.StatusFriend {
				ids = append(ids, friend.UserID)
			}
		}
		return ids, nil
	}

	group, err := s.groups.GetFriendGroup(ctx, activity.FriendGroupID)
	if err != nil {
		return nil, err
	}
	var ids []string
	for uid := range group.Friends {
		ids = append(ids, uid)
	}
	return ids, nil
}

// DeleteActivity removes one occurrence, or the whole link-group when all
// is set. It returns the deleted activity ids and afterwards drops topic
// subscriptions for any weekday left without activities. The check reads
// the remaining list fresh; concurrent deletes on the same day can leave
// a stale subscription behind.
func (s *ActivityService) DeleteActivity(ctx context.Context, activityID string, all bool) ([]string, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return nil, errors.ErrUnauthorized
	}

	var activity models.Activity
	err := s.collection.FindOne(ctx, bson.M{"_id": activityID, "uid": userID}).Decode(&activity)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.ErrNotFound
		}
		return nil, err
	}

	var deletedIDs []string
	var affectedDays []string

	if all && activity.LinkGroupID != "" {
		var linkGroup models.LinkGroup
		err := s.linkGroups.FindOne(ctx, bson.M{"_id": activity.LinkGroupID, "uid": userID}).Decode(&linkGroup)
		if err != nil {
			return nil, err
		}
		siblings, err := s.findActivities(ctx, bson.M{"_id": bson.M{"$in": linkGroup.ActivityIDs}, "uid": userID})
		if err != nil {
			return nil, err
		}
		for _, sibling := range siblings {
			affectedDays = append(affectedDays, sibling.Day)
		}
		if _, err := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": linkGroup.ActivityIDs}, "uid": userID}); err != nil {
			return nil, err
		}
		if _, err := s.linkGroups.DeleteOne(ctx, bson.M{"_id": activity.LinkGroupID}); err != nil {
			log.Printf("Failed to delete link group %s: %v", activity.LinkGroupID, err)
		}
		deletedIDs = linkGroup.ActivityIDs
	} else {
		if activity.LinkGroupID != "" {
			_, err := s.linkGroups.UpdateOne(ctx, bson.M{"_id": activity.LinkGroupID}, bson.M{
				"$pull": bson.M{"activityIds": activityID},
			})
			if err != nil {
				log.Printf("Failed to detach activity %s from link group: %v", activityID, err)
			}
		}
		if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": activityID, "uid": userID}); err != nil {
			return nil, err
		}
		deletedIDs = []string{activityID}
		affectedDays = []string{activity.Day}
	}

	s.syncSubscriptionsAfterDelete(ctx, userID, affectedDays)
	return deletedIDs, nil
}

func (s *ActivityService) syncSubscriptionsAfterDelete(ctx context.Context, userID string, affectedDays []string) {
	remaining, err := s.findActivities(ctx, bson.M{"uid": userID})
	if err != nil {
		log.Printf("Failed to re-read activities for user %s: %v", userID, err)
		return
	}
	stale := daysWithoutActivities(remaining, affectedDays)
	if len(stale) == 0 {
		return
	}
	if err := s.users.RemoveSubscriptions(ctx, userID, stale); err != nil {
		log.Printf("Failed to remove subscriptions for user %s: %v", userID, err)
	}
	token, err := s.users.GetFcmToken(ctx, userID)
	if err != nil {
		log.Printf("Failed to resolve token for user %s: %v", userID, err)
		return
	}
	if token == "" {
		return
	}
	if err := s.dispatch.UnsubscribeFromDays(context.WithoutCancel(ctx), token, stale); err != nil {
		log.Printf("Failed to unsubscribe user %s from %v: %v", userID, stale, err)
	}
}

// daysWithoutActivities returns the subset of candidate days that no
// remaining activity is scheduled on, deduplicated.
func daysWithoutActivities(remaining []models.Activity, candidates []string) []string {
	occupied := make(map[string]bool, len(remaining))
	for _, activity := range remaining {
		occupied[activity.Day] = true
	}
	seen := make(map[string]bool, len(candidates))
	var stale []string
	for _, day := range candidates {
		if occupied[day] || seen[day] {
			continue
		}
		seen[day] = true
		stale = append(stale, day)
	}
	return stale
}
