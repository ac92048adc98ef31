package models

import "time"

// ServiceCenter describes a physical location with a fixed number of bays.
// Operating hours are minutes from midnight in the center's local zone.
type ServiceCenter struct {
	ID             string   `bson:"id" json:"id"`
	Name           string   `bson:"name" json:"name"`
	Timezone       string   `bson:"timezone" json:"timezone"`
	OpenMinute     int      `bson:"open_minute" json:"openMinute"`
	CloseMinute    int      `bson:"close_minute" json:"closeMinute"`
	BayCount       int      `bson:"bay_count" json:"bayCount"`
	Holidays       []string `bson:"holidays" json:"holidays"` // YYYY-MM-DD
	ClosedWeekdays []int    `bson:"closed_weekdays" json:"closedWeekdays"`
}

// Location resolves the center's time zone, falling back to UTC.
func (c *ServiceCenter) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsClosedOn reports whether the center is closed on the given calendar day.
func (c *ServiceCenter) IsClosedOn(day time.Time) bool {
	date := day.Format("2006-01-02")
	for _, h := range c.Holidays {
		if h == date {
			return true
		}
	}
	for _, wd := range c.ClosedWeekdays {
		if int(day.Weekday()) == wd {
			return true
		}
	}
	return false
}
