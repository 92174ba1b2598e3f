package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// ContextKey is the type for request context keys set by the middleware.
type ContextKey string

const (
	// AccountIDKey holds the authenticated account id.
	AccountIDKey ContextKey = "account_id"
	// AccountEmailKey holds the authenticated account email.
	AccountEmailKey ContextKey = "account_email"
)

// Middleware wraps HTTP handlers with session validation.
type Middleware struct {
	jwtService *JWTService
	log        *zap.Logger
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(jwtService *JWTService, log *zap.Logger) *Middleware {
	return &Middleware{
		jwtService: jwtService,
		log:        log,
	}
}

// RequireAuth rejects requests without a valid session token.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.log.Debug("missing authorization header")
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}

		tokenString := ExtractTokenFromBearer(authHeader)
		if tokenString == "" {
			m.log.Debug("invalid authorization header format")
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.log.Debug("invalid token", zap.Error(err))
			if err == ErrExpiredToken {
				http.Error(w, "Token expired", http.StatusUnauthorized)
			} else {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
			}
			return
		}

		ctx := context.WithValue(r.Context(), AccountIDKey, claims.AccountID)
		ctx = context.WithValue(ctx, AccountEmailKey, claims.Email)

		m.log.Debug("authenticated account",
			zap.String("account_id", claims.AccountID),
			zap.String("email", claims.Email))

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetAccountIDFromContext extracts the authenticated account id.
func GetAccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AccountIDKey).(string)
	return id, ok
}

// GetAccountEmailFromContext extracts the authenticated account email.
func GetAccountEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(AccountEmailKey).(string)
	return email, ok
}

// CORS handles cross-origin requests from the dashboard frontend.
func (m *Middleware) CORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowedOrigins := []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}

		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	}
}
