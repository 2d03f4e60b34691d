package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// bulkUpdater is the one collection operation the sweeps need.
// *mongo.Collection satisfies it; tests substitute a recorder.
type bulkUpdater interface {
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// ResetJob clears every completion flag and done counter once per day at
// a fixed hour, starting the next day's cycle. The sweep is unscoped and
// untransacted; a crash mid-sweep leaves a partially reset state that the
// next firing finishes.
type ResetJob struct {
	activities bulkUpdater
	users      bulkUpdater
	hour       int
	now        func() time.Time
}

func NewResetJob(store *Store, hour int) *ResetJob {
	return &ResetJob{
		activities: store.Collection("activities"),
		users:      store.Collection("uids"),
		hour:       hour,
		now:        time.Now,
	}
}

// Run blocks until ctx is cancelled, sweeping once per day.
func (j *ResetJob) Run(ctx context.Context) {
	log.Printf("Reset job started, firing at hour %d", j.hour)
	for {
		next := j.nextFireTime(j.now())
		timer := time.NewTimer(next.Sub(j.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if err := j.Sweep(ctx); err != nil {
			log.Printf("Reset sweep failed: %v", err)
		}
	}
}

// Sweep resets isDone on every completed activity and zeroes every
// positive done counter. Only those two fields are touched.
func (j *ResetJob) Sweep(ctx context.Context) error {
	activities, err := j.activities.UpdateMany(ctx,
		bson.M{"isDone": true},
		bson.M{"$set": bson.M{"isDone": false}},
	)
	if err != nil {
		return err
	}
	users, err := j.users.UpdateMany(ctx,
		bson.M{"doneCount": bson.M{"$gt": 0}},
		bson.M{"$set": bson.M{"doneCount": 0}},
	)
	if err != nil {
		return err
	}
	log.Printf("Reset sweep: %d activities, %d counters cleared", activities.ModifiedCount, users.ModifiedCount)
	return nil
}

func (j *ResetJob) nextFireTime(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), j.hour, 0, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
