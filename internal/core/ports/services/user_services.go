package services

import (
	"context"
	"io"

	"github.com/contactkeeper/contacts_backend/internal/core/domain"
)

// UserSvcFacade exposes operations on the authenticated user's own record.
type UserSvcFacade interface {
	// UpdateAvatar uploads the image to the avatar host, persists the new URL
	// and refreshes the cached user snapshot.
	UpdateAvatar(ctx context.Context, user *domain.User, file io.Reader, size int64, contentType string) (*domain.User, error)
}
