package alerting

import (
	"strings"
	"time"
)

const (
	appointmentTimeLayout = "Jan 02, 2006 at 3:04 PM"
	appointmentDayLayout  = "Jan 02, 2006"
)

func formatAppointmentTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(appointmentTimeLayout)
}

func formatAppointmentDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(appointmentDayLayout)
}

// startOfDay returns local midnight of the day containing t. time.Date
// normalizes DST gaps, so this is safe on transition days.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// endOfDay is the last nanosecond before the next local midnight.
func endOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	next := time.Date(lt.Year(), lt.Month(), lt.Day()+1, 0, 0, 0, 0, loc)
	return next.Add(-time.Nanosecond)
}

func lower(s string) string {
	return strings.ToLower(s)
}
