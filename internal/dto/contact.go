package dto

import (
	"time"

	"github.com/contactkeeper/contacts_backend/internal/core/domain"
)

// CreateContactRequest is the payload for creating a contact.
// Birthday uses the YYYY-MM-DD format.
type CreateContactRequest struct {
	FirstName      string  `json:"first_name" binding:"required,max=100"`
	LastName       string  `json:"last_name" binding:"required,max=100"`
	Email          string  `json:"email" binding:"required,email"`
	PhoneNumber    string  `json:"phone_number" binding:"required,max=30"`
	Birthday       string  `json:"birthday" binding:"required"`
	AdditionalData *string `json:"additional_data"`
}

// UpdateContactRequest replaces all mutable fields of a contact.
type UpdateContactRequest struct {
	FirstName      string  `json:"first_name" binding:"required,max=100"`
	LastName       string  `json:"last_name" binding:"required,max=100"`
	Email          string  `json:"email" binding:"required,email"`
	PhoneNumber    string  `json:"phone_number" binding:"required,max=30"`
	Birthday       string  `json:"birthday" binding:"required"`
	AdditionalData *string `json:"additional_data"`
}

// ListContactsParams defines query parameters for listing contacts.
type ListContactsParams struct {
	Limit  int `form:"limit,default=10"`
	Offset int `form:"offset,default=0"`
}

// ContactResponse is the public shape of a contact.
type ContactResponse struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	Birthday       string    `json:"birthday"`
	AdditionalData *string   `json:"additional_data,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToContactResponse converts a domain.Contact to its response DTO.
func ToContactResponse(contact *domain.Contact) ContactResponse {
	return ContactResponse{
		ID:             contact.ContactID,
		FirstName:      contact.FirstName,
		LastName:       contact.LastName,
		Email:          contact.Email,
		PhoneNumber:    contact.PhoneNumber,
		Birthday:       contact.Birthday.Format("2006-01-02"),
		AdditionalData: contact.AdditionalData,
		CreatedAt:      contact.CreatedAt,
		UpdatedAt:      contact.UpdatedAt,
	}
}

// ToListContactResponse converts a slice of domain contacts to response DTOs.
func ToListContactResponse(contacts []domain.Contact) []ContactResponse {
	responses := make([]ContactResponse, len(contacts))
	for i := range contacts {
		responses[i] = ToContactResponse(&contacts[i])
	}
	return responses
}
