package services

import (
	"context"
	"errors"
	"time"

	"github.com/contactkeeper/contacts_backend/internal/apperrors"
	"github.com/contactkeeper/contacts_backend/internal/core/domain"
	portsrepo "github.com/contactkeeper/contacts_backend/internal/core/ports/repositories"
	portssvc "github.com/contactkeeper/contacts_backend/internal/core/ports/services"
	"github.com/contactkeeper/contacts_backend/internal/dto"
	"github.com/google/uuid"
)

const birthdayLayout = "2006-01-02"

// upcomingBirthdayWindowDays is the lookahead for the birthdays endpoint.
const upcomingBirthdayWindowDays = 7

type contactService struct {
	contactRepo portsrepo.ContactRepository
}

// NewContactService creates a new instance of contactService.
func NewContactService(contactRepo portsrepo.ContactRepository) portssvc.ContactSvcFacade {
	return &contactService{contactRepo: contactRepo}
}

var _ portssvc.ContactSvcFacade = (*contactService)(nil)

func parseBirthday(raw string) (time.Time, error) {
	birthday, err := time.Parse(birthdayLayout, raw)
	if err != nil {
		return time.Time{}, errors.Join(apperrors.ErrValidation, err)
	}
	return birthday, nil
}

func (s *contactService) CreateContact(ctx context.Context, userID string, req dto.CreateContactRequest) (*domain.Contact, error) {
	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	contact := domain.Contact{
		ContactID:      uuid.NewString(),
		UserID:         userID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Birthday:       birthday,
		AdditionalData: req.AdditionalData,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.contactRepo.SaveContact(ctx, contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *contactService) GetContact(ctx context.Context, userID string, contactID string) (*domain.Contact, error) {
	return s.contactRepo.FindContactByID(ctx, userID, contactID)
}

func (s *contactService) ListContacts(ctx context.Context, userID string, limit int, offset int) ([]domain.Contact, error) {
	return s.contactRepo.FindContacts(ctx, userID, limit, offset)
}

func (s *contactService) UpdateContact(ctx context.Context, userID string, contactID string, req dto.UpdateContactRequest) (*domain.Contact, error) {
	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		return nil, err
	}

	contact := domain.Contact{
		ContactID:      contactID,
		UserID:         userID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Birthday:       birthday,
		AdditionalData: req.AdditionalData,
	}
	return s.contactRepo.UpdateContact(ctx, contact)
}

func (s *contactService) DeleteContact(ctx context.Context, userID string, contactID string) error {
	return s.contactRepo.DeleteContact(ctx, userID, contactID)
}

func (s *contactService) UpcomingBirthdays(ctx context.Context, userID string) ([]domain.Contact, error) {
	return s.contactRepo.FindUpcomingBirthdays(ctx, userID, time.Now(), upcomingBirthdayWindowDays)
}
