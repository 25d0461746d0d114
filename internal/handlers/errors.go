package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string            `json:"error" example:"Expense not found"`
	Details map[string]string `json:"details,omitempty"`
}

const internalServerError = "Internal server error"

// respondWithError maps service errors onto status codes. Backend failures
// are logged and never leak their cause.
func respondWithError(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: validationErr.Fields})
	case errors.Is(err, apperrors.ErrUnknownExpenseType):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown expense type"})
	case errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError:
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	case errors.Is(err, apperrors.ErrInvalidState):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid state"})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Already exists"})
	default:
		middleware.GetLoggerFromContext(c).Error("Request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: internalServerError})
	}
}

// requireIdentity returns the caller, or writes 401 and reports false.
func requireIdentity(c *gin.Context) (domain.Identity, bool) {
	identity := middleware.GetIdentity(c)
	if !identity.IsAuthenticated() {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return identity, false
	}
	return identity, true
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}
