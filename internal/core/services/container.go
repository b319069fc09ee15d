package services

import (
	portsclients "github.com/contactkeeper/contacts_backend/internal/core/ports/clients"
	portsrepo "github.com/contactkeeper/contacts_backend/internal/core/ports/repositories"
	portssvc "github.com/contactkeeper/contacts_backend/internal/core/ports/services"
	"github.com/contactkeeper/contacts_backend/internal/platform/config"
)

// NewServiceContainer constructs all service facades once at startup so that
// handlers receive explicit instances rather than hidden globals.
func NewServiceContainer(
	cfg *config.Config,
	repos *portsrepo.RepositoryProvider,
	cache portsclients.UserCache,
	mailer portsclients.Mailer,
	avatars portsclients.AvatarStore,
) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Auth:        NewAuthService(cfg, repos.User, cache, mailer),
		User:        NewUserService(cfg, repos.User, cache, avatars),
		Contact:     NewContactService(repos.Contact),
		GoogleOAuth: NewGoogleOAuthService(cfg),
	}
}
