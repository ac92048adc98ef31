package utils

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format for clock times.
	TimeLayout = "15:04"
)

// ParseDate validates a YYYY-MM-DD date string.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", date, err)
	}
	return t, nil
}

// ParseClockMinutes converts an HH:mm string to minutes from midnight.
func ParseClockMinutes(clock string) (int, error) {
	t, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:mm: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClockMinutes renders minutes from midnight as HH:mm.
func FormatClockMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// CombineDateMinutes builds the absolute time for a date string plus minutes from midnight.
func CombineDateMinutes(date string, minutes int, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", date, err)
	}
	return day.Add(time.Duration(minutes) * time.Minute), nil
}
