package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/dto"
	"github.com/SscSPs/expenseflow/internal/handlers"
	"github.com/SscSPs/expenseflow/internal/middleware"
	"github.com/SscSPs/expenseflow/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTokenRouter(tokenSvc *MockAPITokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", middleware.APITokenAuth(tokenSvc), middleware.AuthMiddleware("unused-secret"))
	handlers.RegisterAPITokenRoutes(api, tokenSvc)
	return r
}

func TestAPITokens_CreateWithAPIKey(t *testing.T) {
	tokenSvc := new(MockAPITokenService)
	r := newTokenRouter(tokenSvc)

	user := &domain.UserProfile{ID: "user-1", Email: "a@example.com", IsActive: true}
	tokenSvc.On("ValidateToken", mock.Anything, "xf_key").Return(user, nil).Once()

	lifetime := time.Hour
	created := &domain.APIToken{ID: uuid.NewString(), UserID: "user-1", Name: "cli laptop", CreatedAt: time.Now()}
	tokenSvc.On("CreateToken", mock.Anything, "user-1", "cli laptop", &lifetime).Return("xf_new_secret", created, nil).Once()

	body, _ := json.Marshal(map[string]any{"name": "cli laptop", "expiresIn": 3600})
	req, _ := http.NewRequest(http.MethodPost, "/api/tokens", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.APITokenHeader, "xf_key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.CreateAPITokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "xf_new_secret", resp.TokenString)
	assert.Equal(t, created.ID, resp.Details.ID)
	tokenSvc.AssertExpectations(t)
}

func TestAPITokens_InvalidKeyFallsThroughToJWT(t *testing.T) {
	tokenSvc := new(MockAPITokenService)
	r := newTokenRouter(tokenSvc)
	tokenSvc.On("ValidateToken", mock.Anything, "xf_bad").Return(nil, apperrors.ErrUnauthorized).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/tokens", nil)
	req.Header.Set(middleware.APITokenHeader, "xf_bad")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	tokenSvc.AssertNotCalled(t, "ListTokens", mock.Anything, mock.Anything)
}

func TestAPITokens_RevokeInvalidID(t *testing.T) {
	tokenSvc := new(MockAPITokenService)
	r := newTokenRouter(tokenSvc)
	tokenSvc.On("ValidateToken", mock.Anything, "xf_key").Return(&domain.UserProfile{ID: "user-1", IsActive: true}, nil).Once()

	req, _ := http.NewRequest(http.MethodDelete, "/api/tokens/not-a-uuid", nil)
	req.Header.Set(middleware.APITokenHeader, "xf_key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	tokenSvc.AssertNotCalled(t, "RevokeToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestAPITokens_RevokeNotFound(t *testing.T) {
	tokenSvc := new(MockAPITokenService)
	r := newTokenRouter(tokenSvc)
	tokenID := uuid.NewString()
	tokenSvc.On("ValidateToken", mock.Anything, "xf_key").Return(&domain.UserProfile{ID: "user-1", IsActive: true}, nil).Once()
	tokenSvc.On("RevokeToken", mock.Anything, "user-1", tokenID).Return(apperrors.NewNotFoundError("Token not found")).Once()

	req, _ := http.NewRequest(http.MethodDelete, "/api/tokens/"+tokenID, nil)
	req.Header.Set(middleware.APITokenHeader, "xf_key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	tokenSvc.AssertExpectations(t)
}

func TestAuth_RefreshWithoutCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := &config.Config{JWTSecret: "secret", RefreshTokenCookieName: "rtid", RefreshTokenCookiePath: "/api/v1/auth"}
	handlers.RegisterAuthRoutes(r, cfg, &portssvc.ServiceContainer{})

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_LogoutWithoutCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := &config.Config{JWTSecret: "secret", RefreshTokenCookieName: "rtid", RefreshTokenCookiePath: "/api/v1/auth"}
	handlers.RegisterAuthRoutes(r, cfg, &portssvc.ServiceContainer{})

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.SessionSignedOut, resp.Event)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "rtid=;")
}
