package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	portsclients "github.com/contactkeeper/contacts_backend/internal/core/ports/clients"
	"github.com/contactkeeper/contacts_backend/internal/core/domain"
	portsrepo "github.com/contactkeeper/contacts_backend/internal/core/ports/repositories"
	portssvc "github.com/contactkeeper/contacts_backend/internal/core/ports/services"
	"github.com/contactkeeper/contacts_backend/internal/middleware"
	"github.com/contactkeeper/contacts_backend/internal/platform/config"
)

type userService struct {
	cfg      *config.Config
	userRepo portsrepo.UserRepository
	cache    portsclients.UserCache
	avatars  portsclients.AvatarStore
}

// NewUserService creates a new instance of userService.
func NewUserService(cfg *config.Config, userRepo portsrepo.UserRepository, cache portsclients.UserCache, avatars portsclients.AvatarStore) portssvc.UserSvcFacade {
	return &userService{
		cfg:      cfg,
		userRepo: userRepo,
		cache:    cache,
		avatars:  avatars,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// UpdateAvatar uploads the image, persists the resulting URL, and refreshes
// the cached snapshot with the shorter avatar TTL so the new URL is visible
// quickly. An upload failure surfaces as an upload error, never as an auth
// error.
func (s *userService) UpdateAvatar(ctx context.Context, user *domain.User, file io.Reader, size int64, contentType string) (*domain.User, error) {
	key := fmt.Sprintf("avatars/%s", user.Email)
	url, err := s.avatars.Upload(ctx, key, file, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("avatar upload failed: %w", err)
	}

	updated, err := s.userRepo.UpdateAvatarURL(ctx, user.Email, url)
	if err != nil {
		return nil, fmt.Errorf("failed to persist avatar URL: %w", err)
	}

	if err := s.cache.Set(ctx, updated, s.cfg.AvatarCacheTTL); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to refresh user cache after avatar update",
			slog.String("email", updated.Email), slog.String("error", err.Error()))
	}

	return updated, nil
}
