package models

import (
	"database/sql"
	"time"
)

// Contact is the database row shape for the contacts table.
type Contact struct {
	ContactID      string         `db:"contact_id"`
	UserID         string         `db:"user_id"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	Email          string         `db:"email"`
	PhoneNumber    string         `db:"phone_number"`
	Birthday       time.Time      `db:"birthday"`
	AdditionalData sql.NullString `db:"additional_data"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}
