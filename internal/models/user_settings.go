package models

import "time"

// DefaultTimezone is used for users who never set one.
const DefaultTimezone = "UTC"

// UserSettings holds per-user preferences.
type UserSettings struct {
	UserID    int64     `json:"user_id"`
	Timezone  string    `json:"timezone"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDefaultUserSettings creates settings with the given timezone, or
// DefaultTimezone when it is empty.
func NewDefaultUserSettings(userID int64, timezone string) *UserSettings {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	return &UserSettings{
		UserID:    userID,
		Timezone:  timezone,
		UpdatedAt: time.Now(),
	}
}

// LocalNow returns now in the user's timezone, falling back to UTC when the
// stored zone no longer loads.
func (s *UserSettings) LocalNow(now time.Time) time.Time {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return now.In(loc)
}
