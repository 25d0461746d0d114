package dto

import "time"

// ExchangeCodeRequest is the body of POST /auth/google/exchange-code.
type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// SessionEvent names an auth state change observed by clients.
type SessionEvent string

const (
	SessionInitial        SessionEvent = "INITIAL_SESSION"
	SessionSignedIn       SessionEvent = "SIGNED_IN"
	SessionSignedOut      SessionEvent = "SIGNED_OUT"
	SessionTokenRefreshed SessionEvent = "TOKEN_REFRESHED"
)

// SessionResponse is returned by every auth endpoint.
type SessionResponse struct {
	Event     SessionEvent  `json:"event"`
	Token     string        `json:"token,omitempty"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty"`
	User      *UserResponse `json:"user,omitempty"`
}
