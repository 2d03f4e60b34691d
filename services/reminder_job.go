package services

import (
	"context"
	"log"
	"time"
)

const reminderBody = "Reminder to complete today's activities!"

// ReminderJob fires a topic-send to the current weekday's topic at one or
// more fixed local hours each day (a primary hour plus offsets for other
// timezones). It reads no per-user state; delivery relies entirely on the
// topic subscriptions the activity service maintains. A failed send is
// logged and not re-attempted until the next firing.
type ReminderJob struct {
	dispatch *DispatchService
	hours    []int
	now      func() time.Time
}

func NewReminderJob(dispatch *DispatchService, hours []int) *ReminderJob {
	return &ReminderJob{dispatch: dispatch, hours: hours, now: time.Now}
}

// Run blocks until ctx is cancelled, firing once per configured hour per day.
func (j *ReminderJob) Run(ctx context.Context) {
	log.Printf("Reminder job started, firing at hours %v", j.hours)
	for {
		next := j.nextFireTime(j.now())
		timer := time.NewTimer(next.Sub(j.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		j.fire(ctx)
	}
}

func (j *ReminderJob) fire(ctx context.Context) {
	topic := WeekdayTopic(j.now())
	if err := j.dispatch.NotifyTopic(ctx, topic, reminderBody); err != nil {
		log.Printf("Error sending reminder to topic %s: %v", topic, err)
		return
	}
	log.Printf("Reminder sent to topic %s", topic)
}

// nextFireTime returns the earliest configured fire time strictly after now.
func (j *ReminderJob) nextFireTime(now time.Time) time.Time {
	var next time.Time
	for _, hour := range j.hours {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next
}
