package middleware

import (
	"log/slog"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the authenticated user's ID in the Gin context.
const (
	userIDKey   = contextKey("userID")
	identityKey = contextKey("identity")
)

// setIdentity records the authenticated caller in both contexts and tags the
// request logger with the user id.
func setIdentity(c *gin.Context, identity domain.Identity) {
	c.Set(string(userIDKey), identity.UserID)
	c.Set(string(identityKey), identity)

	enriched := GetLoggerFromContext(c).With(
		slog.String("user_id", identity.UserID),
		slog.String("auth_method", string(identity.AuthMethod)),
	)
	c.Set(string(loggerKey), enriched)
	c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), enriched))
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		return "", false
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetIdentity returns the authenticated caller, or the zero Identity.
func GetIdentity(c *gin.Context) domain.Identity {
	if v, exists := c.Get(string(identityKey)); exists {
		if identity, ok := v.(domain.Identity); ok {
			return identity
		}
	}
	return domain.Identity{}
}

// isAuthenticated reports whether an earlier middleware already set an identity.
func isAuthenticated(c *gin.Context) bool {
	return GetIdentity(c).IsAuthenticated()
}
