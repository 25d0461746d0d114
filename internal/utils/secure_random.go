package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// GenerateSecureRandomString returns lengthInBytes random bytes hex encoded,
// so 32 bytes yield 64 characters.
func GenerateSecureRandomString(lengthInBytes int) (string, error) {
	b, err := secureRandomBytes(lengthInBytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateSecureRandomCode returns length characters drawn from alphabet.
// Used for the human readable suffix of expense numbers.
func GenerateSecureRandomCode(length int, alphabet string) (string, error) {
	if alphabet == "" {
		return "", errors.New("alphabet must not be empty")
	}
	b, err := secureRandomBytes(length)
	if err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, v := range b {
		out[i] = alphabet[int(v)%len(alphabet)]
	}
	return string(out), nil
}

func secureRandomBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("length must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}
