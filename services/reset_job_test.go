package services

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type updateManyCall struct {
	filter interface{}
	update interface{}
}

type fakeBulkUpdater struct {
	calls    []updateManyCall
	modified int64
	err      error
}

func (f *fakeBulkUpdater) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, updateManyCall{filter: filter, update: update})
	return &mongo.UpdateResult{MatchedCount: f.modified, ModifiedCount: f.modified}, nil
}

func TestSweepTouchesOnlyCompletionState(t *testing.T) {
	activities := &fakeBulkUpdater{modified: 3}
	users := &fakeBulkUpdater{modified: 2}
	j := &ResetJob{activities: activities, users: users, hour: 22, now: time.Now}

	if err := j.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	if len(activities.calls) != 1 {
		t.Fatalf("expected 1 activity sweep, got %d", len(activities.calls))
	}
	if !reflect.DeepEqual(activities.calls[0].filter, bson.M{"isDone": true}) {
		t.Errorf("unexpected activity filter: %v", activities.calls[0].filter)
	}
	if !reflect.DeepEqual(activities.calls[0].update, bson.M{"$set": bson.M{"isDone": false}}) {
		t.Errorf("sweep must only reset isDone, got %v", activities.calls[0].update)
	}

	if len(users.calls) != 1 {
		t.Fatalf("expected 1 counter sweep, got %d", len(users.calls))
	}
	if !reflect.DeepEqual(users.calls[0].filter, bson.M{"doneCount": bson.M{"$gt": 0}}) {
		t.Errorf("unexpected counter filter: %v", users.calls[0].filter)
	}
	if !reflect.DeepEqual(users.calls[0].update, bson.M{"$set": bson.M{"doneCount": 0}}) {
		t.Errorf("sweep must only zero doneCount, got %v", users.calls[0].update)
	}
}

func TestSweepStopsOnActivityError(t *testing.T) {
	activities := &fakeBulkUpdater{err: fmt.Errorf("store unavailable")}
	users := &fakeBulkUpdater{}
	j := &ResetJob{activities: activities, users: users, hour: 22, now: time.Now}

	if err := j.Sweep(context.Background()); err == nil {
		t.Fatal("expected error when the activity sweep fails")
	}
	if len(users.calls) != 0 {
		t.Errorf("counter sweep must not run after a failed activity sweep, got %d calls", len(users.calls))
	}
}
