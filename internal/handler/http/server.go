package http

import (
	"LinkBio-Backend/internal/analytics"
	"LinkBio-Backend/internal/auth"
	"LinkBio-Backend/internal/repository"
	"LinkBio-Backend/internal/service"
	"net/http"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Server wires the HTTP handlers onto one mux.
type Server struct {
	authHandlers     *auth.AuthHandlers
	profileHandler   *ProfileHandler
	trackHandler     *TrackHandler
	dashboardHandler *DashboardHandler
	healthHandler    *HealthHandler
	authMiddleware   *auth.Middleware
	log              *zap.Logger
}

// NewServer creates the HTTP server wiring.
func NewServer(
	storage repository.Storage,
	profiles *service.ProfileService,
	recorder *analytics.Recorder,
	jwtService *auth.JWTService,
	tokenService *auth.TokenService,
	sender auth.Sender,
	loginTokenTTL time.Duration,
	log *zap.Logger,
) *Server {
	authHandlers := auth.NewAuthHandlers(storage, jwtService, tokenService, sender, loginTokenTTL, log)
	profileHandler := NewProfileHandler(profiles, log)
	trackHandler := NewTrackHandler(recorder, log)
	dashboardHandler := NewDashboardHandler(profiles, log)
	healthHandler := NewHealthHandler(storage, recorder, log)

	authMiddleware := auth.NewMiddleware(jwtService, log)

	return &Server{
		authHandlers:     authHandlers,
		profileHandler:   profileHandler,
		trackHandler:     trackHandler,
		dashboardHandler: dashboardHandler,
		healthHandler:    healthHandler,
		authMiddleware:   authMiddleware,
		log:              log,
	}
}

// SetupRoutes builds the route table.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks (no auth)
	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)
	mux.HandleFunc("/metrics", s.healthHandler.Metrics)

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Auth endpoints (no auth)
	mux.HandleFunc("/api/auth/login", s.withCORS(s.authHandlers.Login))
	mux.HandleFunc("/api/auth/verify", s.withCORS(s.authHandlers.Verify))

	// Analytics ingest (no auth, fired from public pages)
	mux.HandleFunc("/track/view", s.withCORS(s.trackHandler.TrackView))
	mux.HandleFunc("/track/click", s.withCORS(s.trackHandler.TrackClick))

	// Dashboard endpoints (auth required)
	mux.HandleFunc("/api/dashboard", s.withCORS(s.authMiddleware.RequireAuth(s.dashboardHandler.Overview)))
	mux.HandleFunc("/api/profile", s.withCORS(s.authMiddleware.RequireAuth(s.dashboardHandler.UpdateProfile)))
	mux.HandleFunc("/api/links", s.withCORS(s.authMiddleware.RequireAuth(s.dashboardHandler.HandleLinks)))
	mux.HandleFunc("/api/links/reorder", s.withCORS(s.authMiddleware.RequireAuth(s.dashboardHandler.Reorder)))
	mux.HandleFunc("/api/links/", s.withCORS(s.authMiddleware.RequireAuth(s.dashboardHandler.HandleLinkByID)))

	// Public profile resolver (no auth), must stay last
	mux.HandleFunc("/", s.profileHandler.HandleProfile)

	return mux
}

// withCORS adds CORS headers to a handler.
func (s *Server) withCORS(handler http.HandlerFunc) http.HandlerFunc {
	return s.authMiddleware.CORS(handler)
}

// isSystemPath reports whether a path belongs to a service endpoint rather
// than a public profile.
func isSystemPath(path string) bool {
	systemPaths := []string{
		"/api/",
		"/track/",
		"/health",
		"/ready",
		"/metrics",
		"/swagger/",
		"/docs/",
	}

	for _, systemPath := range systemPaths {
		if strings.HasPrefix(path, systemPath) {
			return true
		}
	}

	return false
}
