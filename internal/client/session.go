package client

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/SscSPs/expenseflow/internal/dto"
)

// SessionState is what subscribers observe after each auth change.
type SessionState struct {
	Event     dto.SessionEvent
	User      *dto.UserResponse
	ExpiresAt *time.Time
}

// SignedIn reports whether the state carries a user.
func (s SessionState) SignedIn() bool { return s.User != nil }

// Session tracks the signed-in user of a Client and keeps its access token current.
type Session struct {
	client *Client

	mu        sync.Mutex
	state     SessionState
	listeners map[int]func(SessionState)
	nextID    int
}

// NewSession binds a session to c. Restore loads any existing login.
func NewSession(c *Client) *Session {
	return &Session{client: c, listeners: map[int]func(SessionState){}}
}

// State returns the latest session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every auth change and returns its removal.
func (s *Session) Subscribe(fn func(SessionState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Restore resolves the current user from the configured credentials, falling
// back to the refresh cookie when the access token is missing or expired.
// It emits INITIAL_SESSION, with a nil user when nobody is signed in.
func (s *Session) Restore(ctx context.Context) (SessionState, error) {
	var resp dto.SessionResponse
	if s.client.HasCredentials() {
		err := s.client.do(ctx, http.MethodGet, "/api/v1/auth/session", nil, nil, &resp)
		if err == nil {
			return s.publish(resp), nil
		}
		if !IsStatus(err, http.StatusUnauthorized) {
			return SessionState{}, err
		}
	}

	// No usable access token; a remembered refresh cookie may still sign us in.
	resp, err := s.refresh(ctx)
	if err != nil && !IsStatus(err, http.StatusUnauthorized) {
		return SessionState{}, err
	}
	resp.Event = dto.SessionInitial
	return s.publish(resp), nil
}

// SignIn exchanges a Google authorization code for a session.
func (s *Session) SignIn(ctx context.Context, code string) (SessionState, error) {
	var resp dto.SessionResponse
	if err := s.client.do(ctx, http.MethodPost, "/api/v1/auth/google/exchange-code", nil, dto.ExchangeCodeRequest{Code: code}, &resp); err != nil {
		return SessionState{}, err
	}
	return s.publish(resp), nil
}

// Refresh trades the refresh cookie for a new access token.
func (s *Session) Refresh(ctx context.Context) (SessionState, error) {
	resp, err := s.refresh(ctx)
	if err != nil {
		return SessionState{}, err
	}
	return s.publish(resp), nil
}

// refresh returns a zero response when the cookie is rejected.
func (s *Session) refresh(ctx context.Context) (dto.SessionResponse, error) {
	var resp dto.SessionResponse
	if err := s.client.do(ctx, http.MethodPost, "/api/v1/auth/refresh", nil, nil, &resp); err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			s.client.SetBearerToken("")
		}
		return dto.SessionResponse{}, err
	}
	return resp, nil
}

// SignOut revokes the refresh token and forgets the access token.
func (s *Session) SignOut(ctx context.Context) error {
	err := s.client.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil, nil)
	s.client.SetBearerToken("")
	s.publish(dto.SessionResponse{Event: dto.SessionSignedOut})
	return err
}

// publish stores the response as the current state and notifies listeners.
func (s *Session) publish(resp dto.SessionResponse) SessionState {
	if resp.Token != "" {
		s.client.SetBearerToken(resp.Token)
	}
	next := SessionState{Event: resp.Event, User: resp.User, ExpiresAt: resp.ExpiresAt}

	s.mu.Lock()
	if next.ExpiresAt == nil && next.User != nil && s.state.User != nil && s.state.User.ID == next.User.ID {
		next.ExpiresAt = s.state.ExpiresAt
	}
	s.state = next
	listeners := make([]func(SessionState), 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}
