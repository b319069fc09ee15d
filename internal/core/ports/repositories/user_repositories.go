package repositories

import (
	"context"

	"github.com/contactkeeper/contacts_backend/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// SaveUser inserts a new user. Returns apperrors.ErrDuplicate when the
	// email is already registered.
	SaveUser(ctx context.Context, user domain.User) error

	// FindUserByEmail returns apperrors.ErrNotFound when no user exists.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ConfirmEmail flips the confirmed flag for the given email.
	ConfirmEmail(ctx context.Context, email string) error

	// UpdateAvatarURL stores the avatar URL and returns the updated user.
	UpdateAvatarURL(ctx context.Context, email string, url string) (*domain.User, error)

	// SetRefreshToken unconditionally overwrites the stored refresh token,
	// invalidating whatever was there before.
	SetRefreshToken(ctx context.Context, userID string, token string) error

	// RotateRefreshToken atomically replaces oldToken with newToken. It must
	// fail with apperrors.ErrInvalidToken when the stored value no longer
	// equals oldToken, so that of two racing refreshes at most one succeeds.
	RotateRefreshToken(ctx context.Context, userID string, oldToken string, newToken string) error

	// ClearRefreshToken empties the stored slot, forcing a fresh login.
	ClearRefreshToken(ctx context.Context, userID string) error
}
