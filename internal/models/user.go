package models

import "time"

type User struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	Timezone string `json:"timezone"`
}

// Location loads the user's timezone.
func (u *User) Location() (*time.Location, error) {
	return time.LoadLocation(u.Timezone)
}
