package domain

import "time"

// Contact represents a single entry in a user's contact list.
type Contact struct {
	ContactID      string
	UserID         string
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    string
	Birthday       time.Time
	AdditionalData *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
