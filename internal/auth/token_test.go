package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenService(t *testing.T) {
	svc := NewTokenServiceWithCost(bcrypt.MinCost)

	t.Run("generated token verifies against its hash", func(t *testing.T) {
		token, hash, err := svc.Generate()
		require.NoError(t, err)
		assert.Len(t, token, 64)
		assert.NotEqual(t, token, hash)

		assert.NoError(t, svc.Verify(hash, token))
	})

	t.Run("wrong token does not verify", func(t *testing.T) {
		_, hash, err := svc.Generate()
		require.NoError(t, err)

		err = svc.Verify(hash, "deadbeef")
		assert.ErrorIs(t, err, ErrTokenMismatch)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		first, _, err := svc.Generate()
		require.NoError(t, err)
		second, _, err := svc.Generate()
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}
