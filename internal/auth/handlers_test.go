package auth

import (
	"LinkBio-Backend/internal/repository/memory"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// captureSender records the last issued token instead of sending mail.
type captureSender struct {
	email string
	token string
}

func (s *captureSender) SendLoginToken(_ context.Context, email, token string) error {
	s.email = email
	s.token = token
	return nil
}

func newTestAuthHandlers(t *testing.T) (*AuthHandlers, *captureSender) {
	t.Helper()
	storage := memory.New()
	jwtService := NewJWTService(&JWTConfig{
		SecretKey:       []byte("test-secret"),
		SessionDuration: time.Hour,
		Issuer:          "LinkBio-Backend",
	})
	sender := &captureSender{}
	handlers := NewAuthHandlers(storage, jwtService, NewTokenServiceWithCost(bcrypt.MinCost), sender, 15*time.Minute, zap.NewNop())
	return handlers, sender
}

func postJSON(t *testing.T, handler http.HandlerFunc, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestLoginAndVerify(t *testing.T) {
	t.Run("full flow issues a session", func(t *testing.T) {
		handlers, sender := newTestAuthHandlers(t)

		rec := postJSON(t, handlers.Login, LoginRequest{Email: "Alice@Example.com"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice@example.com", sender.email)
		require.NotEmpty(t, sender.token)

		rec = postJSON(t, handlers.Verify, VerifyRequest{Email: "alice@example.com", Token: sender.token})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp SessionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "alice@example.com", resp.Account.Email)
		assert.NotEmpty(t, resp.Account.ID)
	})

	t.Run("token is single use", func(t *testing.T) {
		handlers, sender := newTestAuthHandlers(t)

		rec := postJSON(t, handlers.Login, LoginRequest{Email: "alice@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = postJSON(t, handlers.Verify, VerifyRequest{Email: "alice@example.com", Token: sender.token})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = postJSON(t, handlers.Verify, VerifyRequest{Email: "alice@example.com", Token: sender.token})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong token is rejected", func(t *testing.T) {
		handlers, _ := newTestAuthHandlers(t)

		rec := postJSON(t, handlers.Login, LoginRequest{Email: "alice@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = postJSON(t, handlers.Verify, VerifyRequest{Email: "alice@example.com", Token: "deadbeef"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid email is rejected", func(t *testing.T) {
		handlers, _ := newTestAuthHandlers(t)

		rec := postJSON(t, handlers.Login, LoginRequest{Email: "nope"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("verifying keeps the same account id across logins", func(t *testing.T) {
		handlers, sender := newTestAuthHandlers(t)

		login := func() SessionResponse {
			rec := postJSON(t, handlers.Login, LoginRequest{Email: "alice@example.com"})
			require.Equal(t, http.StatusOK, rec.Code)
			rec = postJSON(t, handlers.Verify, VerifyRequest{Email: "alice@example.com", Token: sender.token})
			require.Equal(t, http.StatusOK, rec.Code)
			var resp SessionResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			return resp
		}

		first := login()
		second := login()
		assert.Equal(t, first.Account.ID, second.Account.ID)
	})
}
