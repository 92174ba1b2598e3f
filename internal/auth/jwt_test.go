package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(sessionDuration time.Duration) *JWTService {
	return NewJWTService(&JWTConfig{
		SecretKey:       []byte("test-secret"),
		SessionDuration: sessionDuration,
		Issuer:          "LinkBio-Backend",
	})
}

func TestJWTService(t *testing.T) {
	accountID := "11111111-1111-1111-1111-111111111111"

	t.Run("round trip", func(t *testing.T) {
		svc := newTestJWTService(time.Hour)

		token, err := svc.GenerateSessionToken(accountID, "alice@example.com")
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, accountID, claims.AccountID)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, accountID, claims.Subject)
	})

	t.Run("expired token", func(t *testing.T) {
		svc := newTestJWTService(-time.Minute)

		token, err := svc.GenerateSessionToken(accountID, "alice@example.com")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		svc := newTestJWTService(time.Hour)
		token, err := svc.GenerateSessionToken(accountID, "alice@example.com")
		require.NoError(t, err)

		other := NewJWTService(&JWTConfig{
			SecretKey:       []byte("different-secret"),
			SessionDuration: time.Hour,
			Issuer:          "LinkBio-Backend",
		})
		_, err = other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc := newTestJWTService(time.Hour)
		_, err := svc.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractTokenFromBearer(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromBearer("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromBearer("abc"))
	assert.Equal(t, "", ExtractTokenFromBearer(""))
	assert.Equal(t, "", ExtractTokenFromBearer("Bearer "))
}
