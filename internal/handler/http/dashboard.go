package http

import (
	"LinkBio-Backend/internal/auth"
	"LinkBio-Backend/internal/domain"
	"LinkBio-Backend/internal/repository"
	"LinkBio-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// DashboardHandler serves the authenticated owner endpoints. Every request
// operates on the caller's own profile; link ids from other profiles behave
// exactly like ids that do not exist.
type DashboardHandler struct {
	profiles *service.ProfileService
	log      *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(profiles *service.ProfileService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		profiles: profiles,
		log:      log,
	}
}

// OverviewResponse is the dashboard landing payload.
type OverviewResponse struct {
	Profile     *domain.Profile `json:"profile"`
	Links       []*domain.Link  `json:"links"`
	TotalViews  int64           `json:"total_views"`
	TotalClicks int64           `json:"total_clicks"`
}

// UpdateProfileRequest is the profile form. Omitted or empty optional fields
// clear the column; an omitted theme keeps the current one.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	Theme       string `json:"theme"`
}

// AddLinkRequest is the add-link form.
type AddLinkRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// SetVisibilityRequest toggles a link.
type SetVisibilityRequest struct {
	IsVisible bool `json:"is_visible"`
}

// ReorderRequest rewrites link positions to the given id order.
type ReorderRequest struct {
	LinkIDs []string `json:"linkIds"`
}

// Overview handles GET /api/dashboard. The profile is provisioned on first
// access.
//
//	@Summary		Dashboard overview
//	@Description	Return the caller's profile, links and aggregate counters
//	@Tags			Dashboard
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	OverviewResponse	"Overview"
//	@Failure		401	{object}	APIResponse			"Unauthorized"
//	@Router			/api/dashboard [get]
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	principalID, email, ok := principal(r)
	if !ok {
		writeError(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	overview, err := h.profiles.Overview(r.Context(), principalID, email)
	if err != nil {
		h.log.Error("failed to build dashboard overview", zap.String("account_id", principalID), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	links := overview.Links
	if links == nil {
		links = []*domain.Link{}
	}

	writeJSON(w, OverviewResponse{
		Profile:     overview.Profile,
		Links:       links,
		TotalViews:  overview.TotalViews,
		TotalClicks: overview.TotalClicks,
	}, http.StatusOK)
}

// UpdateProfile handles PATCH /api/profile.
//
//	@Summary		Update profile
//	@Description	Update the caller's display name, bio, avatar and theme
//	@Tags			Dashboard
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		UpdateProfileRequest	true	"Profile form"
//	@Success		200		{object}	APIResponse				"Updated"
//	@Failure		400		{object}	APIResponse				"Invalid request data"
//	@Failure		401		{object}	APIResponse				"Unauthorized"
//	@Router			/api/profile [patch]
func (h *DashboardHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	principalID, email, ok := principal(r)
	if !ok {
		writeError(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	// Provisioning first keeps the update path valid on a caller's very
	// first dashboard request.
	if _, err := h.profiles.EnsureProfile(r.Context(), principalID, email); err != nil {
		h.log.Error("failed to ensure profile", zap.String("account_id", principalID), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	err := h.profiles.UpdateProfile(r.Context(), principalID, service.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		Theme:       req.Theme,
	})
	if err != nil {
		h.respondServiceError(w, principalID, err)
		return
	}

	writeJSON(w, nil, http.StatusOK)
}

// HandleLinks routes /api/links: POST creates a link.
//
//	@Summary		Add a link
//	@Description	Create a link at the end of the caller's page
//	@Tags			Dashboard
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		AddLinkRequest	true	"Link form"
//	@Success		201		{object}	domain.Link		"Created link"
//	@Failure		400		{object}	APIResponse		"Invalid request data"
//	@Failure		401		{object}	APIResponse		"Unauthorized"
//	@Router			/api/links [post]
func (h *DashboardHandler) HandleLinks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	principalID, email, ok := principal(r)
	if !ok {
		writeError(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	var req AddLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if _, err := h.profiles.EnsureProfile(r.Context(), principalID, email); err != nil {
		h.log.Error("failed to ensure profile", zap.String("account_id", principalID), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	link, err := h.profiles.AddLink(r.Context(), principalID, service.AddLinkInput{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		h.respondServiceError(w, principalID, err)
		return
	}

	h.log.Info("link created",
		zap.String("account_id", principalID),
		zap.String("link_id", link.ID),
		zap.Int("position", link.Position))
	writeJSON(w, link, http.StatusCreated)
}

// Reorder handles POST /api/links/reorder.
//
//	@Summary		Reorder links
//	@Description	Rewrite link positions to match the given id order
//	@Tags			Dashboard
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ReorderRequest	true	"Ordered link ids"
//	@Success		200		{object}	APIResponse		"Reordered"
//	@Failure		400		{object}	APIResponse		"Invalid request data"
//	@Failure		401		{object}	APIResponse		"Unauthorized"
//	@Router			/api/links/reorder [post]
func (h *DashboardHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	principalID, _, ok := principal(r)
	if !ok {
		writeError(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := h.profiles.ReorderLinks(r.Context(), principalID, req.LinkIDs); err != nil {
		h.respondServiceError(w, principalID, err)
		return
	}

	writeJSON(w, nil, http.StatusOK)
}

// HandleLinkByID routes /api/links/{id} and /api/links/{id}/visibility.
//
//	@Summary		Delete or toggle a link
//	@Description	DELETE removes a link; PATCH on /visibility toggles it
//	@Tags			Dashboard
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string		true	"Link id"
//	@Success		200	{object}	APIResponse	"Done"
//	@Failure		404	{object}	APIResponse	"Link not found"
//	@Router			/api/links/{id} [delete]
func (h *DashboardHandler) HandleLinkByID(w http.ResponseWriter, r *http.Request) {
	principalID, _, ok := principal(r)
	if !ok {
		writeError(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/links/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.deleteLink(w, r, principalID, parts[0])
	case len(parts) == 2 && parts[1] == "visibility" && r.Method == http.MethodPatch:
		h.setVisibility(w, r, principalID, parts[0])
	default:
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *DashboardHandler) deleteLink(w http.ResponseWriter, r *http.Request, principalID, linkID string) {
	if err := h.profiles.DeleteLink(r.Context(), principalID, linkID); err != nil {
		h.respondServiceError(w, principalID, err)
		return
	}

	h.log.Info("link deleted", zap.String("account_id", principalID), zap.String("link_id", linkID))
	writeJSON(w, nil, http.StatusOK)
}

func (h *DashboardHandler) setVisibility(w http.ResponseWriter, r *http.Request, principalID, linkID string) {
	var req SetVisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := h.profiles.SetLinkVisibility(r.Context(), principalID, linkID, req.IsVisible); err != nil {
		h.respondServiceError(w, principalID, err)
		return
	}

	writeJSON(w, nil, http.StatusOK)
}

// respondServiceError maps service errors onto HTTP statuses. A link owned
// by someone else reports the same not-found as a missing link.
func (h *DashboardHandler) respondServiceError(w http.ResponseWriter, principalID string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrLinkNotFound):
		writeError(w, "Link not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrProfileNotFound):
		writeError(w, "Profile not found", http.StatusNotFound)
	default:
		h.log.Error("dashboard operation failed", zap.String("account_id", principalID), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func principal(r *http.Request) (id, email string, ok bool) {
	id, ok = auth.GetAccountIDFromContext(r.Context())
	if !ok {
		return "", "", false
	}
	email, _ = auth.GetAccountEmailFromContext(r.Context())
	return id, email, true
}
