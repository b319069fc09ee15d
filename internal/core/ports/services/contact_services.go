package services

import (
	"context"

	"github.com/contactkeeper/contacts_backend/internal/core/domain"
	"github.com/contactkeeper/contacts_backend/internal/dto"
)

// ContactSvcFacade exposes CRUD over a user's contact list.
type ContactSvcFacade interface {
	CreateContact(ctx context.Context, userID string, req dto.CreateContactRequest) (*domain.Contact, error)
	GetContact(ctx context.Context, userID string, contactID string) (*domain.Contact, error)
	ListContacts(ctx context.Context, userID string, limit int, offset int) ([]domain.Contact, error)
	UpdateContact(ctx context.Context, userID string, contactID string, req dto.UpdateContactRequest) (*domain.Contact, error)
	DeleteContact(ctx context.Context, userID string, contactID string) error
	UpcomingBirthdays(ctx context.Context, userID string) ([]domain.Contact, error)
}
