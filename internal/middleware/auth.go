package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/contactkeeper/contacts_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// UserResolver authenticates an access token and resolves it to a user.
// Implemented by the auth service; declared here so the middleware does not
// depend on the service layer.
type UserResolver interface {
	ResolveUser(ctx context.Context, accessToken string) (*domain.User, error)
}

// AuthMiddleware creates a Gin middleware handler that gates every protected
// endpoint: it extracts the bearer token, validates it as an access token and
// resolves the subject to a user. Every failure is a generic 401; the client
// learns nothing about whether the token was absent, malformed, expired, of
// the wrong scope, or pointed at an unknown user.
func AuthMiddleware(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), parts[1])
		if err != nil {
			logger.Warn("Access token rejected", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}

		// Store the user in the context and enrich the logger
		ctxWithUser := context.WithValue(c.Request.Context(), currentUserKey, user)
		enrichedLogger := logger.With(slog.String("user_id", user.UserID))
		ctxWithLoggerAndUser := context.WithValue(ctxWithUser, loggerCtxKey, enrichedLogger)
		c.Request = c.Request.WithContext(ctxWithLoggerAndUser)

		c.Next()
	}
}
