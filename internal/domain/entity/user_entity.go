package entity

import (
	"time"
)

// User is identified by its username for the lifetime of the system.
// Email stays nil until the first email-bearing action and is never
// overwritten once set.
type User struct {
	ID          string
	Username    string
	DisplayName string
	Email       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasEmail reports whether an email has been recorded for the user.
func (u *User) HasEmail() bool {
	return u != nil && u.Email != nil && *u.Email != ""
}

// Ref projects the user to the identity exposed across the core boundary.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, Email: u.Email}
}

// UserRef is the public identity of a creator or booker.
type UserRef struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	Email       *string `json:"email"`
}

// HasEmail reports whether the referenced user can be notified.
func (r UserRef) HasEmail() bool {
	return r.Email != nil && *r.Email != ""
}
