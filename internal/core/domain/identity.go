package domain

// AuthMethod records which credential authenticated a request.
type AuthMethod string

const (
	AuthMethodJWT      AuthMethod = "jwt"
	AuthMethodAPIToken AuthMethod = "api_token"
)

// Identity is the authenticated caller. A zero Identity means anonymous.
type Identity struct {
	UserID     string
	Email      string
	AuthMethod AuthMethod
}

// IsAuthenticated reports whether the identity carries a user id.
func (i Identity) IsAuthenticated() bool {
	return i.UserID != ""
}
