package client_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/expenseflow/internal/client"
	"github.com/SscSPs/expenseflow/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authServer fakes the auth routes: exchange sets a refresh cookie, refresh
// honours it and session accepts the issued bearer token.
func authServer(t *testing.T) http.Handler {
	t.Helper()
	user := &dto.UserResponse{ID: "user-1", Email: "alice@example.com", Role: "employee", IsActive: true}
	expires := time.Now().Add(time.Hour).UTC()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/google/exchange-code", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "rtid", Value: "user-1:raw", Path: "/api/v1/auth", HttpOnly: true})
		writeJSON(w, http.StatusOK, dto.SessionResponse{Event: dto.SessionSignedIn, Token: "access-1", ExpiresAt: &expires, User: user})
	})
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("rtid")
		if err != nil || cookie.Value == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid refresh token"})
			return
		}
		writeJSON(w, http.StatusOK, dto.SessionResponse{Event: dto.SessionTokenRefreshed, Token: "access-2", ExpiresAt: &expires, User: user})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "rtid", Value: "", Path: "/api/v1/auth", MaxAge: -1})
		writeJSON(w, http.StatusOK, dto.SessionResponse{Event: dto.SessionSignedOut})
	})
	mux.HandleFunc("GET /api/v1/auth/session", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth != "Bearer access-1" && auth != "Bearer access-2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, dto.SessionResponse{Event: dto.SessionInitial, User: user})
	})
	return mux
}

func TestSession_Lifecycle(t *testing.T) {
	c := newTestClient(t, authServer(t))
	session := client.NewSession(c)

	var events []dto.SessionEvent
	unsubscribe := session.Subscribe(func(s client.SessionState) { events = append(events, s.Event) })
	defer unsubscribe()
	ctx := context.Background()

	state, err := session.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, state.SignedIn())

	state, err = session.SignIn(ctx, "auth-code")
	require.NoError(t, err)
	assert.True(t, state.SignedIn())
	assert.True(t, c.HasCredentials())

	state, err = session.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", state.User.ID)

	require.NoError(t, session.SignOut(ctx))
	assert.False(t, session.State().SignedIn())
	assert.False(t, c.HasCredentials())

	_, err = session.Refresh(ctx)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))

	assert.Equal(t, []dto.SessionEvent{
		dto.SessionInitial,
		dto.SessionSignedIn,
		dto.SessionTokenRefreshed,
		dto.SessionSignedOut,
	}, events)
}

func TestSession_RestoreWithBearer(t *testing.T) {
	c := newTestClient(t, authServer(t), client.WithBearerToken("access-1"))
	session := client.NewSession(c)

	state, err := session.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.SessionInitial, state.Event)
	require.True(t, state.SignedIn())
	assert.Equal(t, "alice@example.com", state.User.Email)
}

func TestSession_RestoreFallsBackToRefreshCookie(t *testing.T) {
	c := newTestClient(t, authServer(t))
	first := client.NewSession(c)
	_, err := first.SignIn(context.Background(), "auth-code")
	require.NoError(t, err)
	c.SetBearerToken("expired")

	state, err := client.NewSession(c).Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.SessionInitial, state.Event)
	assert.True(t, state.SignedIn())
	require.NotNil(t, state.ExpiresAt)
}
