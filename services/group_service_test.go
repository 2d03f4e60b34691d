package services

import (
	"context"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestClearGroupRefsKeepsActivities(t *testing.T) {
	activities := &fakeBulkUpdater{modified: 2}
	s := &GroupService{activities: activities}

	if err := s.clearGroupRefs(context.Background(), "uid-1", "g1"); err != nil {
		t.Fatalf("clearGroupRefs returned error: %v", err)
	}

	if len(activities.calls) != 1 {
		t.Fatalf("expected 1 update, got %d", len(activities.calls))
	}
	call := activities.calls[0]
	if !reflect.DeepEqual(call.filter, bson.M{"uid": "uid-1", "friendGroupId": "g1"}) {
		t.Errorf("cascade must target only the owner's activities in the group, got %v", call.filter)
	}
	if !reflect.DeepEqual(call.update, bson.M{"$set": bson.M{"friendGroupId": ""}}) {
		t.Errorf("cascade must only blank the group reference, got %v", call.update)
	}
}

func TestClearGroupRefsNoMatchesIsFine(t *testing.T) {
	activities := &fakeBulkUpdater{}
	s := &GroupService{activities: activities}

	if err := s.clearGroupRefs(context.Background(), "uid-1", "g1"); err != nil {
		t.Errorf("a group with no activities must clear cleanly: %v", err)
	}
}
