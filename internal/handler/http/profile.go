package http

import (
	"LinkBio-Backend/internal/domain"
	"LinkBio-Backend/internal/repository"
	"LinkBio-Backend/internal/service"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ProfileHandler serves the public profile page data.
type ProfileHandler struct {
	profiles *service.ProfileService
	log      *zap.Logger
}

// NewProfileHandler creates a new public profile handler.
func NewProfileHandler(profiles *service.ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		log:      log,
	}
}

// PublicProfileResponse is the public page payload. Only visible links are
// included, already in display order.
type PublicProfileResponse struct {
	Profile *domain.Profile `json:"profile"`
	Links   []*domain.Link  `json:"links"`
}

// HandleProfile resolves GET /{username}. It is mounted as the catch-all
// route, so system paths are filtered out first.
//
//	@Summary		Resolve a public profile
//	@Description	Return a profile and its visible links by username
//	@Tags			Public
//	@Produce		json
//	@Param			username	path		string					true	"Profile username"
//	@Success		200			{object}	PublicProfileResponse	"Profile found"
//	@Failure		404			{object}	APIResponse				"Profile not found"
//	@Router			/{username} [get]
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	username := strings.TrimPrefix(r.URL.Path, "/")
	if username == "" || strings.Contains(username, "/") || isSystemPath(r.URL.Path) {
		http.NotFound(w, r)
		return
	}

	resolved, err := h.profiles.Resolve(r.Context(), username)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			h.log.Debug("profile not found", zap.String("username", username))
			writeError(w, "Profile not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to resolve profile", zap.String("username", username), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	links := resolved.Links
	if links == nil {
		links = []*domain.Link{}
	}

	writeJSON(w, PublicProfileResponse{
		Profile: resolved.Profile,
		Links:   links,
	}, http.StatusOK)
}
