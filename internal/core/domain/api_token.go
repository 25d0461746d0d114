package domain

import (
	"strings"
	"time"
)

// APITokenPrefix starts every personal access token string.
const APITokenPrefix = "xf_"

// APIToken is a personal access token used by non-browser clients.
type APIToken struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Name       string     `json:"name"`
	TokenHash  string     `json:"-"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// IsExpired checks if the token has expired
func (t *APIToken) IsExpired() bool {
	if t.ExpiresAt == nil {
		return false
	}
	return t.ExpiresAt.Before(time.Now())
}

// FormatAPIToken builds the string handed to the user: xf_<id>_<secret>.
func FormatAPIToken(id, secret string) string {
	return APITokenPrefix + id + "_" + secret
}

// ParseAPIToken splits a token string into its id and secret parts.
func ParseAPIToken(token string) (id, secret string, ok bool) {
	rest, found := strings.CutPrefix(token, APITokenPrefix)
	if !found {
		return "", "", false
	}
	id, secret, found = strings.Cut(rest, "_")
	if !found || id == "" || secret == "" {
		return "", "", false
	}
	return id, secret, true
}
