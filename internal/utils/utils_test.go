package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-1", "secret", "expenseflow", time.Now(), time.Hour)
	require.NoError(t, err)

	claims, err := ParseAndValidateJWT(token, "secret", jwt.WithIssuer("expenseflow"))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)

	_, err = ParseAndValidateJWT(token, "other-secret")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = ParseAndValidateJWT(token, "secret", jwt.WithIssuer("someone-else"))
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWT_Expired(t *testing.T) {
	token, err := GenerateJWT("user-1", "secret", "expenseflow", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWT_MissingSubject(t *testing.T) {
	token, err := GenerateJWT("", "secret", "expenseflow", time.Now(), time.Hour)
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(token, "secret")
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestJWT_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "user-1"})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(signed, "secret")
	assert.Error(t, err)
}

func TestRefreshToken_HashAndCookie(t *testing.T) {
	hash := HashRefreshToken("raw-token")
	assert.Len(t, hash, 64)
	assert.True(t, CompareRefreshTokenHash("raw-token", hash))
	assert.False(t, CompareRefreshTokenHash("other", hash))

	value := EncodeRefreshCookie("user-1", "raw-token")
	userID, token, ok := DecodeRefreshCookie(value)
	require.True(t, ok)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "raw-token", token)

	for _, bad := range []string{"", "no-separator", ":token", "user-1:"} {
		_, _, ok := DecodeRefreshCookie(bad)
		assert.False(t, ok, bad)
	}
}

func TestSecureRandom(t *testing.T) {
	s, err := GenerateSecureRandomString(32)
	require.NoError(t, err)
	assert.Len(t, s, 64)

	_, err = GenerateSecureRandomString(0)
	assert.Error(t, err)

	code, err := GenerateSecureRandomCode(6, "ABC")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Empty(t, strings.Trim(code, "ABC"))

	_, err = GenerateSecureRandomCode(6, "")
	assert.Error(t, err)
}

func TestSecretHash(t *testing.T) {
	hash, err := HashSecret("xf_secret")
	require.NoError(t, err)
	assert.True(t, CheckSecretHash("xf_secret", hash))
	assert.False(t, CheckSecretHash("wrong", hash))
}
