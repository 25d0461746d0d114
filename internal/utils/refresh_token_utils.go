package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// refreshCookieSeparator joins the user id and the raw refresh token in the cookie.
const refreshCookieSeparator = ":"

// HashRefreshToken returns the hex SHA-256 of a raw refresh token. Only the hash is stored.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CompareRefreshTokenHash checks a raw refresh token against its stored hash.
func CompareRefreshTokenHash(token string, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashRefreshToken(token)), []byte(storedHash)) == 1
}

// EncodeRefreshCookie builds the refresh cookie value for userID.
func EncodeRefreshCookie(userID, token string) string {
	return userID + refreshCookieSeparator + token
}

// DecodeRefreshCookie splits a refresh cookie value. ok is false when either part is missing.
func DecodeRefreshCookie(value string) (userID, token string, ok bool) {
	userID, token, ok = strings.Cut(value, refreshCookieSeparator)
	if !ok || userID == "" || token == "" {
		return "", "", false
	}
	return userID, token, true
}
