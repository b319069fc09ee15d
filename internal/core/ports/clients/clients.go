package clients

import (
	"context"
	"io"
	"time"

	"github.com/contactkeeper/contacts_backend/internal/core/domain"
)

// UserCache is a TTL-bounded, shared cache mapping user email to a snapshot
// of the user record. It is advisory: a nil user with a nil error is a miss,
// and any error must be treated by callers as a miss (fail open), never as a
// reason to reject the request.
type UserCache interface {
	Get(ctx context.Context, email string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User, ttl time.Duration) error
	Invalidate(ctx context.Context, email string) error
}

// Mailer sends the account confirmation email. Callers treat failures as
// log-and-continue; the signup itself must not be aborted by a mail error.
type Mailer interface {
	SendConfirmationEmail(ctx context.Context, to string, username string, confirmURL string) error
}

// AvatarStore uploads an avatar image to the external image host and returns
// its public URL.
type AvatarStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}
