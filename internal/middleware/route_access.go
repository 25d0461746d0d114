package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/policy"
	"github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// RequireRouteAccess rejects callers whose role is not allowed on the request
// path. Paths without a rule are allowed. Must run after authentication.
func RequireRouteAccess(users services.UserReaderSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if !identity.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		profile, err := users.GetUserByID(c.Request.Context(), identity.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User profile not found"})
				return
			}
			GetLoggerFromContext(c).Error("Failed to load profile for route check", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !profile.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is inactive"})
			return
		}

		if !policy.CanAccessRoute(profile, c.Request.URL.Path) {
			GetLoggerFromContext(c).Warn("Route access denied", slog.String("role", string(profile.Role)))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role for this resource"})
			return
		}
		c.Next()
	}
}
