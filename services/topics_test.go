package services

import (
	"testing"
	"time"
)

func TestWeekdayTopic(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(2023, 9, 3, 12, 0, 0, 0, time.UTC), "Sunday"},
		{time.Date(2023, 9, 4, 12, 0, 0, 0, time.UTC), "Monday"},
		{time.Date(2023, 9, 9, 12, 0, 0, 0, time.UTC), "Saturday"},
	}
	for _, c := range cases {
		if got := WeekdayTopic(c.date); got != c.want {
			t.Errorf("WeekdayTopic(%v) = %s, want %s", c.date, got, c.want)
		}
	}
}

func TestIsWeekday(t *testing.T) {
	for _, day := range Weekdays {
		if !IsWeekday(day) {
			t.Errorf("IsWeekday(%s) = false", day)
		}
	}
	for _, bad := range []string{"", "monday", "Funday", "Mon"} {
		if IsWeekday(bad) {
			t.Errorf("IsWeekday(%s) = true", bad)
		}
	}
}
