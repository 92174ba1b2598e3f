package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost for login token hashes. Tokens are short-lived so a
	// moderate cost keeps verification cheap under a burst of attempts.
	DefaultBcryptCost = 10

	loginTokenBytes = 32
)

var ErrTokenMismatch = errors.New("token mismatch")

// TokenService generates and verifies one-time login tokens. Only the bcrypt
// hash is stored; the plaintext exists once, inside the login email.
type TokenService struct {
	cost int
}

// NewTokenService creates a token service with the default cost.
func NewTokenService() *TokenService {
	return &TokenService{
		cost: DefaultBcryptCost,
	}
}

// NewTokenServiceWithCost creates a token service with an explicit cost.
func NewTokenServiceWithCost(cost int) *TokenService {
	return &TokenService{
		cost: cost,
	}
}

// Generate returns a fresh random token and its bcrypt hash.
func (s *TokenService) Generate() (token string, hash string, err error) {
	buf := make([]byte, loginTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}
	token = hex.EncodeToString(buf)

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(token), s.cost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash token: %w", err)
	}

	return token, string(hashedBytes), nil
}

// Verify checks a presented token against a stored hash.
func (s *TokenService) Verify(hash, token string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		return ErrTokenMismatch
	}
	return nil
}
