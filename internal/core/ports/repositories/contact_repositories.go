package repositories

import (
	"context"
	"time"

	"github.com/contactkeeper/contacts_backend/internal/core/domain"
)

// ContactRepository defines persistence operations for a user's contacts.
// Every lookup is scoped to the owning user.
type ContactRepository interface {
	SaveContact(ctx context.Context, contact domain.Contact) error
	FindContactByID(ctx context.Context, userID string, contactID string) (*domain.Contact, error)
	FindContacts(ctx context.Context, userID string, limit int, offset int) ([]domain.Contact, error)
	UpdateContact(ctx context.Context, contact domain.Contact) (*domain.Contact, error)
	DeleteContact(ctx context.Context, userID string, contactID string) error

	// FindUpcomingBirthdays returns contacts whose birthday (month/day) falls
	// within days of from.
	FindUpcomingBirthdays(ctx context.Context, userID string, from time.Time, days int) ([]domain.Contact, error)
}
