package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/contactkeeper/contacts_backend/internal/apperrors"
	portsclients "github.com/contactkeeper/contacts_backend/internal/core/ports/clients"
	"github.com/contactkeeper/contacts_backend/internal/core/domain"
	portsrepo "github.com/contactkeeper/contacts_backend/internal/core/ports/repositories"
	portssvc "github.com/contactkeeper/contacts_backend/internal/core/ports/services"
	"github.com/contactkeeper/contacts_backend/internal/dto"
	"github.com/contactkeeper/contacts_backend/internal/middleware"
	"github.com/contactkeeper/contacts_backend/internal/platform/config"
	"github.com/contactkeeper/contacts_backend/internal/utils"
	"github.com/google/uuid"
)

// authService implements AuthSvcFacade. It bundles the credential hasher,
// token codec and cache client behind one explicit instance constructed at
// startup and injected into handlers.
type authService struct {
	cfg      *config.Config
	userRepo portsrepo.UserRepository
	cache    portsclients.UserCache
	mailer   portsclients.Mailer
}

// NewAuthService creates a new instance of authService.
func NewAuthService(cfg *config.Config, userRepo portsrepo.UserRepository, cache portsclients.UserCache, mailer portsclients.Mailer) portssvc.AuthSvcFacade {
	return &authService{
		cfg:      cfg,
		userRepo: userRepo,
		cache:    cache,
		mailer:   mailer,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest, baseURL string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicate
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	avatar := utils.GravatarURL(req.Email, 250)
	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Confirmed:    false,
		Avatar:       &avatar,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index on email closes the check-then-insert race.
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	// Fire-and-forget: a mail failure must not fail the signup.
	bgCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.sendConfirmationEmail(bgCtx, &user, baseURL); err != nil {
			logger.Error("Failed to send confirmation email",
				slog.String("email", user.Email), slog.String("error", err.Error()))
		}
	}()

	return &user, nil
}

func (s *authService) Login(ctx context.Context, email string, password string) (*domain.TokenPair, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user for login: %w", err)
	}
	if !user.Confirmed {
		return nil, apperrors.ErrEmailNotConfirmed
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(user.Email)
	if err != nil {
		return nil, err
	}

	// Overwriting the slot invalidates any previously issued refresh token.
	if err := s.userRepo.SetRefreshToken(ctx, user.UserID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}
	s.invalidateCache(ctx, user.Email)

	return pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	email, err := utils.ParseScopedJWT(refreshToken, s.cfg.JWTSecret, domain.ScopeRefresh)
	if err != nil {
		return nil, err
	}

	// The stored slot is read from the authoritative store, never the cache.
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up user for refresh: %w", err)
	}

	// A validly signed token that no longer matches the slot means it was
	// already rotated: treat as reuse, revoke the slot, force re-login.
	if user.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(refreshToken)) != 1 {
		if err := s.userRepo.ClearRefreshToken(ctx, user.UserID); err != nil {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to revoke refresh token",
				slog.String("user_id", user.UserID), slog.String("error", err.Error()))
		}
		return nil, apperrors.ErrInvalidToken
	}

	pair, err := s.issueTokenPair(user.Email)
	if err != nil {
		return nil, err
	}

	// Compare-and-swap so that of two racing refreshes at most one succeeds;
	// the loser observes a mismatched slot and fails.
	if err := s.userRepo.RotateRefreshToken(ctx, user.UserID, refreshToken, pair.RefreshToken); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, user.Email)

	return pair, nil
}

func (s *authService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	// Confirmation tokens carry their own scope; an access or refresh token
	// signed with the same secret is not accepted here.
	email, err := utils.ParseScopedJWT(token, s.cfg.JWTSecret, domain.ScopeEmail)
	if err != nil {
		return false, err
	}

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user.Confirmed {
		return true, nil
	}

	if err := s.userRepo.ConfirmEmail(ctx, email); err != nil {
		return false, err
	}
	s.invalidateCache(ctx, email)

	return false, nil
}

func (s *authService) RequestEmailConfirmation(ctx context.Context, email string, baseURL string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Do not reveal whether the address is registered.
			return nil
		}
		return fmt.Errorf("failed to look up user for email request: %w", err)
	}
	if user.Confirmed {
		return nil
	}

	bgCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.sendConfirmationEmail(bgCtx, user, baseURL); err != nil {
			logger.Error("Failed to re-send confirmation email",
				slog.String("email", user.Email), slog.String("error", err.Error()))
		}
	}()
	return nil
}

func (s *authService) LoginWithGoogle(ctx context.Context, info domain.GoogleUserInfo) (*domain.TokenPair, error) {
	if !info.VerifiedEmail || info.Email == "" {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.userRepo.FindUserByEmail(ctx, info.Email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user for google login: %w", err)
		}
		user, err = s.createGoogleUser(ctx, info)
		if err != nil {
			return nil, err
		}
	}

	pair, err := s.issueTokenPair(user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetRefreshToken(ctx, user.UserID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}
	s.invalidateCache(ctx, user.Email)

	return pair, nil
}

// ResolveUser backs the per-request auth gate: token decode, then cache
// lookup with store fallback and cache repopulation. Cache failures fail
// open to the store; they never reject the request.
func (s *authService) ResolveUser(ctx context.Context, accessToken string) (*domain.User, error) {
	email, err := utils.ParseScopedJWT(accessToken, s.cfg.JWTSecret, domain.ScopeAccess)
	if err != nil {
		return nil, err
	}

	cached, err := s.cache.Get(ctx, email)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("User cache unavailable, falling back to store",
			slog.String("error", err.Error()))
	}
	if cached != nil {
		return cached, nil
	}

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if err := s.cache.Set(ctx, user, s.cfg.UserCacheTTL); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to repopulate user cache",
			slog.String("error", err.Error()))
	}

	return user, nil
}

func (s *authService) issueTokenPair(email string) (*domain.TokenPair, error) {
	accessToken, err := utils.GenerateScopedJWT(email, domain.ScopeAccess, s.cfg.JWTSecret, s.cfg.AccessTokenExpiry, s.cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := utils.GenerateScopedJWT(email, domain.ScopeRefresh, s.cfg.JWTSecret, s.cfg.RefreshTokenExpiry, s.cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

func (s *authService) sendConfirmationEmail(ctx context.Context, user *domain.User, baseURL string) error {
	token, err := utils.GenerateScopedJWT(user.Email, domain.ScopeEmail, s.cfg.JWTSecret, s.cfg.EmailTokenExpiry, s.cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("failed to generate confirmation token: %w", err)
	}
	confirmURL := fmt.Sprintf("%s/api/auth/confirmed_email/%s", baseURL, token)
	return s.mailer.SendConfirmationEmail(ctx, user.Email, user.Username, confirmURL)
}

func (s *authService) createGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	// The account has no usable password; store a hash of random bytes so
	// password login always fails until the user sets one.
	random, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate placeholder password: %w", err)
	}
	hash, err := utils.HashPassword(random)
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}

	avatar := info.Picture
	if avatar == "" {
		avatar = utils.GravatarURL(info.Email, 250)
	}
	username := info.Name
	if username == "" {
		username = info.Email
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		Email:        info.Email,
		PasswordHash: hash,
		Confirmed:    true, // Google already verified the address
		Avatar:       &avatar,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// invalidateCache drops the cached snapshot after a user mutation. Failures
// are logged and swallowed: the cache is advisory and entries expire anyway.
func (s *authService) invalidateCache(ctx context.Context, email string) {
	if err := s.cache.Invalidate(ctx, email); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to invalidate user cache",
			slog.String("email", email), slog.String("error", err.Error()))
	}
}
