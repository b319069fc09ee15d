package middleware

import (
	"github.com/contactkeeper/contacts_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// currentUserKey is the key used to store the authenticated user in the
// request context. Using a custom type prevents collisions.
const currentUserKey = contextKey("currentUser")

// GetCurrentUser retrieves the authenticated user placed in the context by
// the auth middleware. It returns the user and a boolean indicating if it
// was found.
func GetCurrentUser(c *gin.Context) (*domain.User, bool) {
	userVal := c.Request.Context().Value(currentUserKey)
	if userVal == nil {
		return nil, false
	}
	user, ok := userVal.(*domain.User)
	if !ok {
		return nil, false
	}
	return user, true
}
