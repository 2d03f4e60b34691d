package services

import "time"

// Weekdays are the seven topic names, indexed by time.Weekday.
var Weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// IsWeekday reports whether day is one of the seven topic names.
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// WeekdayTopic returns the topic name for the weekday of t.
func WeekdayTopic(t time.Time) string {
	return Weekdays[int(t.Weekday())]
}
