package services

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"accountive-server/models"
	"accountive-server/utils/errors"
)

type fakeUserDirectory struct {
	usernames map[string]string
	tokens    map[string]string
	added     [][]string
	removed   [][]string
}

func (f *fakeUserDirectory) GetUsername(ctx context.Context, userID string) (string, error) {
	return f.usernames[userID], nil
}

func (f *fakeUserDirectory) GetFcmToken(ctx context.Context, userID string) (string, error) {
	return f.tokens[userID], nil
}

func (f *fakeUserDirectory) GetFcmTokens(ctx context.Context, userIDs []string) ([]string, error) {
	var users []models.User
	for _, id := range userIDs {
		users = append(users, models.User{PublicID: id, FcmToken: f.tokens[id]})
	}
	return collectTokens(users), nil
}

func (f *fakeUserDirectory) AddSubscriptions(ctx context.Context, userID string, days []string) error {
	f.added = append(f.added, days)
	return nil
}

func (f *fakeUserDirectory) RemoveSubscriptions(ctx context.Context, userID string, days []string) error {
	f.removed = append(f.removed, days)
	return nil
}

type fakeFriendLister struct {
	friends []models.Friend
	called  bool
}

func (f *fakeFriendLister) GetFriends(ctx context.Context) ([]models.Friend, error) {
	f.called = true
	return f.friends, nil
}

type fakeGroupReader struct {
	groups map[string]models.FriendGroup
}

func (f *fakeGroupReader) GetFriendGroup(ctx context.Context, groupID string) (models.FriendGroup, error) {
	group, ok := f.groups[groupID]
	if !ok {
		return models.FriendGroup{}, errors.ErrNotFound
	}
	return group, nil
}

func newFanOutService(users *fakeUserDirectory, friends *fakeFriendLister, groups *fakeGroupReader, messenger *fakeMessenger) *ActivityService {
	return &ActivityService{
		users:    users,
		friends:  friends,
		groups:   groups,
		dispatch: NewDispatchService(messenger),
	}
}

func TestDaysWithoutActivities(t *testing.T) {
	remaining := []models.Activity{
		{ID: "1", Day: "Monday"},
		{ID: "2", Day: "Wednesday"},
	}

	// Monday still has an activity, Friday does not
	stale := daysWithoutActivities(remaining, []string{"Monday", "Friday"})
	if len(stale) != 1 || stale[0] != "Friday" {
		t.Errorf("expected [Friday], got %v", stale)
	}
}

func TestDaysWithoutActivitiesAllOccupied(t *testing.T) {
	remaining := []models.Activity{{ID: "1", Day: "Monday"}}
	if stale := daysWithoutActivities(remaining, []string{"Monday"}); len(stale) != 0 {
		t.Errorf("expected no stale days, got %v", stale)
	}
}

func TestDaysWithoutActivitiesEmptyRemaining(t *testing.T) {
	stale := daysWithoutActivities(nil, []string{"Monday", "Tuesday"})
	if len(stale) != 2 {
		t.Errorf("expected both days stale, got %v", stale)
	}
}

func TestDaysWithoutActivitiesDeduplicates(t *testing.T) {
	// A deleted multi-day link-group can report the same day twice
	stale := daysWithoutActivities(nil, []string{"Monday", "Monday"})
	if len(stale) != 1 || stale[0] != "Monday" {
		t.Errorf("expected [Monday], got %v", stale)
	}
}

func TestCompletionBody(t *testing.T) {
	got := completionBody("andy", "Run")
	want := `andy completed task "Run"!`
	if got != want {
		t.Errorf("completionBody = %q, want %q", got, want)
	}
}

func TestCompletionBodyKeepsRawTitle(t *testing.T) {
	// Titles go into the push body as typed, quotes and all
	got := completionBody("mika", `drink "2l" ☕`)
	want := `mika completed task "drink "2l" ☕"!`
	if got != want {
		t.Errorf("completionBody = %q, want %q", got, want)
	}
}

func TestUpdateActivityValidatesBeforeDeleting(t *testing.T) {
	// No store wired: any delete attempt would panic, so reaching an
	// ErrInvalidInput proves the input is checked before anything is removed
	s := &ActivityService{}
	ctx := context.WithValue(context.Background(), "userID", "uid-1")

	if _, err := s.UpdateActivity(ctx, models.Activity{ID: "a1", Title: "Run"}, []string{"Funday"}); err != errors.ErrInvalidInput {
		t.Errorf("unknown weekday: expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.UpdateActivity(ctx, models.Activity{ID: "a1"}, []string{"Monday"}); err != errors.ErrInvalidInput {
		t.Errorf("empty title: expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.UpdateActivity(ctx, models.Activity{ID: "a1", Title: "Run"}, nil); err != errors.ErrInvalidInput {
		t.Errorf("empty day set: expected ErrInvalidInput, got %v", err)
	}
}

func TestNotifyCompletionScopesToConfirmedFriends(t *testing.T) {
	users := &fakeUserDirectory{
		usernames: map[string]string{"uid-1": "andy"},
		tokens:    map[string]string{"f1": "tok-f1", "f2": "tok-f2"},
	}
	friends := &fakeFriendLister{friends: []models.Friend{
		{UserID: "f1", Status: models.StatusFriend},
		{UserID: "f2", Status: models.StatusPending},
	}}
	fake := &fakeMessenger{}
	s := newFanOutService(users, friends, &fakeGroupReader{}, fake)

	s.notifyCompletion(context.Background(), models.Activity{ID: "a1", UserID: "uid-1", Title: "Run"})

	if len(fake.multicasts) != 1 {
		t.Fatalf("expected 1 multicast, got %d", len(fake.multicasts))
	}
	msg := fake.multicasts[0]
	if len(msg.Tokens) != 1 || msg.Tokens[0] != "tok-f1" {
		t.Errorf("only confirmed friends should be notified, got tokens %v", msg.Tokens)
	}
	if msg.Notification.Body != `andy completed task "Run"!` {
		t.Errorf("unexpected body %q", msg.Notification.Body)
	}
}

func TestNotifyCompletionScopesToFriendGroup(t *testing.T) {
	users := &fakeUserDirectory{
		usernames: map[string]string{"uid-1": "andy"},
		tokens:    map[string]string{"m1": "tok-m1", "m2": "tok-m2", "f1": "tok-f1"},
	}
	friends := &fakeFriendLister{friends: []models.Friend{
		{UserID: "f1", Status: models.StatusFriend},
	}}
	groups := &fakeGroupReader{groups: map[string]models.FriendGroup{
		"g1": {ID: "g1", Owner: "uid-1", Friends: map[string]models.FriendEntry{
			"m1": {Username: "mika"},
			"m2": {Username: "nam"},
		}},
	}}
	fake := &fakeMessenger{}
	s := newFanOutService(users, friends, groups, fake)

	s.notifyCompletion(context.Background(), models.Activity{ID: "a1", UserID: "uid-1", Title: "Run", FriendGroupID: "g1"})

	if friends.called {
		t.Error("a grouped activity must not consult the full friend list")
	}
	if len(fake.multicasts) != 1 {
		t.Fatalf("expected 1 multicast, got %d", len(fake.multicasts))
	}
	got := append([]string(nil), fake.multicasts[0].Tokens...)
	sort.Strings(got)
	if want := []string{"tok-m1", "tok-m2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected group member tokens %v, got %v", want, got)
	}
}

func TestNotifyCompletionSkipsTokenlessRecipients(t *testing.T) {
	users := &fakeUserDirectory{
		usernames: map[string]string{"uid-1": "andy"},
		tokens:    map[string]string{"f1": "tok-f1"},
	}
	friends := &fakeFriendLister{friends: []models.Friend{
		{UserID: "f1", Status: models.StatusFriend},
		{UserID: "f2", Status: models.StatusFriend},
	}}
	fake := &fakeMessenger{}
	s := newFanOutService(users, friends, &fakeGroupReader{}, fake)

	s.notifyCompletion(context.Background(), models.Activity{ID: "a1", UserID: "uid-1", Title: "Run"})

	if len(fake.multicasts) != 1 {
		t.Fatalf("expected 1 multicast, got %d", len(fake.multicasts))
	}
	if tokens := fake.multicasts[0].Tokens; len(tokens) != 1 || tokens[0] != "tok-f1" {
		t.Errorf("friend without a device must be dropped, got tokens %v", tokens)
	}
}

func TestNotifyCompletionNoRecipientsNoSend(t *testing.T) {
	users := &fakeUserDirectory{usernames: map[string]string{"uid-1": "andy"}}
	fake := &fakeMessenger{}
	s := newFanOutService(users, &fakeFriendLister{}, &fakeGroupReader{}, fake)

	s.notifyCompletion(context.Background(), models.Activity{ID: "a1", UserID: "uid-1", Title: "Run"})

	if len(fake.multicasts) != 0 {
		t.Errorf("expected no multicast, got %d", len(fake.multicasts))
	}
}
