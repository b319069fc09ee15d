package domain

import "time"

// User represents a registered account in the domain.
// Email is the natural key used as the JWT subject and the cache key.
type User struct {
	UserID       string
	Username     string
	Email        string
	PasswordHash string
	Confirmed    bool
	Avatar       *string
	// RefreshToken holds the single currently-valid refresh token.
	// It is overwritten on every login/refresh and cleared when a stale
	// token is presented.
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
