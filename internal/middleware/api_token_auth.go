package middleware

import (
	"log/slog"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// APITokenHeader carries a personal access token.
const APITokenHeader = "x-api-key"

// APITokenAuth authenticates requests carrying an x-api-key header. A missing
// or invalid key falls through to AuthMiddleware, which then rejects the
// request unless a bearer token is present.
func APITokenAuth(tokenSvc services.APITokenSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(APITokenHeader)
		if apiKey == "" {
			c.Next()
			return
		}

		user, err := tokenSvc.ValidateToken(c.Request.Context(), apiKey)
		if err != nil {
			GetLoggerFromContext(c).Warn("API token rejected", slog.String("error", err.Error()))
			c.Next()
			return
		}

		setIdentity(c, domain.Identity{UserID: user.ID, Email: user.Email, AuthMethod: domain.AuthMethodAPIToken})
		c.Next()
	}
}
