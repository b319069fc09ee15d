package services

import (
	"context"

	"github.com/contactkeeper/contacts_backend/internal/core/domain"
	"github.com/contactkeeper/contacts_backend/internal/dto"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// AuthSvcFacade orchestrates session lifecycle: signup, login, token refresh
// and email confirmation. Handlers map its errors to HTTP statuses; the
// service itself never touches transport concerns.
type AuthSvcFacade interface {
	// Register creates an unconfirmed user and fires off the confirmation
	// email. Returns apperrors.ErrDuplicate for an already-registered email.
	Register(ctx context.Context, req dto.RegisterRequest, baseURL string) (*domain.User, error)

	// Login verifies credentials and issues a fresh access+refresh pair,
	// persisting the refresh token as the single valid slot.
	// Fails with ErrInvalidCredentials or ErrEmailNotConfirmed.
	Login(ctx context.Context, email string, password string) (*domain.TokenPair, error)

	// Refresh rotates the token pair. A refresh token that does not match the
	// stored slot clears the slot and fails with ErrInvalidToken.
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)

	// ConfirmEmail flips the confirmed flag. Idempotent: a second call
	// reports alreadyConfirmed=true with no error.
	ConfirmEmail(ctx context.Context, token string) (alreadyConfirmed bool, err error)

	// RequestEmailConfirmation re-sends the confirmation email for an
	// unconfirmed account. It reveals nothing about whether the email exists.
	RequestEmailConfirmation(ctx context.Context, email string, baseURL string) error

	// LoginWithGoogle finds or creates a confirmed account for a verified
	// Google identity and issues a token pair.
	LoginWithGoogle(ctx context.Context, info domain.GoogleUserInfo) (*domain.TokenPair, error)

	// ResolveUser authenticates an access token and resolves its subject to a
	// user, consulting the cache before the store. This backs the per-request
	// auth gate.
	ResolveUser(ctx context.Context, accessToken string) (*domain.User, error)
}

// GoogleOAuthSvcFacade wraps the Google OAuth code flow.
type GoogleOAuthSvcFacade interface {
	GenerateStateString(ctx context.Context) (string, error)
	GetGoogleLoginURL(ctx context.Context, state string) string
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error)
}
