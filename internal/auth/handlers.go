package auth

import (
	"LinkBio-Backend/internal/domain"
	"LinkBio-Backend/internal/repository"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sender delivers a login token to an email address. The default
// implementation only logs; a real mail provider plugs in behind this
// interface.
type Sender interface {
	SendLoginToken(ctx context.Context, email, token string) error
}

// LogSender logs the token instead of sending mail. Local development only.
type LogSender struct {
	Log *zap.Logger
}

func (s *LogSender) SendLoginToken(_ context.Context, email, token string) error {
	s.Log.Info("login token issued",
		zap.String("email", email),
		zap.String("token", token))
	return nil
}

// AuthHandlers implements the magic-link login flow: request a token by
// email, then exchange the token for a session JWT.
type AuthHandlers struct {
	storage       repository.Storage
	jwtService    *JWTService
	tokenService  *TokenService
	sender        Sender
	loginTokenTTL time.Duration
	log           *zap.Logger
}

// NewAuthHandlers creates the auth handlers.
func NewAuthHandlers(storage repository.Storage, jwtService *JWTService, tokenService *TokenService, sender Sender, loginTokenTTL time.Duration, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		storage:       storage,
		jwtService:    jwtService,
		tokenService:  tokenService,
		sender:        sender,
		loginTokenTTL: loginTokenTTL,
		log:           log,
	}
}

// LoginRequest asks for a login token to be sent.
type LoginRequest struct {
	Email string `json:"email"`
}

// VerifyRequest exchanges a login token for a session.
type VerifyRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// SessionResponse is the successful verification payload.
type SessionResponse struct {
	AccessToken string      `json:"access_token"`
	Account     AccountInfo `json:"account"`
}

// AccountInfo is the public account shape.
type AccountInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ErrorResponse carries a caller-facing error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Login issues a one-time login token and sends it to the given address.
//
//	@Summary		Request a login token
//	@Description	Send a one-time login token to the given email address
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest		true	"Login request"
//	@Success		200		{object}	map[string]bool		"Token sent if the address is deliverable"
//	@Failure		400		{object}	ErrorResponse		"Invalid request data"
//	@Router			/api/auth/login [post]
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid login request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !isValidEmail(req.Email) {
		h.writeError(w, "Invalid email format", http.StatusBadRequest)
		return
	}

	token, hash, err := h.tokenService.Generate()
	if err != nil {
		h.log.Error("failed to generate login token", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	loginToken := &domain.LoginToken{
		Email:     req.Email,
		TokenHash: hash,
		ExpiresAt: time.Now().UTC().Add(h.loginTokenTTL),
	}
	if err := h.storage.CreateLoginToken(r.Context(), loginToken); err != nil {
		h.log.Error("failed to store login token", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.sender.SendLoginToken(r.Context(), req.Email, token); err != nil {
		// Do not leak delivery failures; the caller sees the same reply
		// whether or not the address exists.
		h.log.Warn("failed to send login token", zap.String("email", req.Email), zap.Error(err))
	}

	h.writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

// Verify redeems a login token for a session JWT. The account is created on
// the first successful verification.
//
//	@Summary		Verify a login token
//	@Description	Exchange a one-time login token for a session JWT
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		VerifyRequest	true	"Verification request"
//	@Success		200		{object}	SessionResponse	"Session issued"
//	@Failure		400		{object}	ErrorResponse	"Invalid request data"
//	@Failure		401		{object}	ErrorResponse	"Invalid or expired token"
//	@Router			/api/auth/verify [post]
func (h *AuthHandlers) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid verify request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !isValidEmail(req.Email) || req.Token == "" {
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	candidates, err := h.storage.ListActiveLoginTokens(r.Context(), req.Email)
	if err != nil {
		h.log.Error("failed to list login tokens", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var matched *domain.LoginToken
	for _, candidate := range candidates {
		if h.tokenService.Verify(candidate.TokenHash, req.Token) == nil {
			matched = candidate
			break
		}
	}
	if matched == nil {
		h.log.Debug("no matching login token", zap.String("email", req.Email))
		h.writeError(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	// Single use. A concurrent redeem of the same token loses here.
	if err := h.storage.ConsumeLoginToken(r.Context(), matched.ID); err != nil {
		h.log.Debug("login token already consumed", zap.String("token_id", matched.ID), zap.Error(err))
		h.writeError(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	account, err := h.storage.FindOrCreateAccount(r.Context(), req.Email)
	if err != nil {
		h.log.Error("failed to resolve account", zap.String("email", req.Email), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	accessToken, err := h.jwtService.GenerateSessionToken(account.ID, account.Email)
	if err != nil {
		h.log.Error("failed to generate session token", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := SessionResponse{
		AccessToken: accessToken,
		Account: AccountInfo{
			ID:    account.ID,
			Email: account.Email,
		},
	}

	h.log.Info("account logged in", zap.String("account_id", account.ID), zap.String("email", req.Email))
	h.writeJSON(w, response, http.StatusOK)
}

// Helper methods

func (h *AuthHandlers) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *AuthHandlers) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func isValidEmail(email string) bool {
	return strings.Contains(email, "@") && len(email) > 3 && len(email) < 255
}
