package http

import (
	"LinkBio-Backend/internal/analytics"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// TrackHandler accepts fire-and-forget analytics events from public pages.
// Both endpoints acknowledge before the write lands; a dropped event is
// acceptable, a slow page view is not.
type TrackHandler struct {
	recorder *analytics.Recorder
	log      *zap.Logger
}

// NewTrackHandler creates a new tracking handler.
func NewTrackHandler(recorder *analytics.Recorder, log *zap.Logger) *TrackHandler {
	return &TrackHandler{
		recorder: recorder,
		log:      log,
	}
}

// TrackViewRequest reports one page view.
type TrackViewRequest struct {
	ProfileID string `json:"profileId"`
}

// TrackClickRequest reports one link click.
type TrackClickRequest struct {
	LinkID    string `json:"linkId"`
	ProfileID string `json:"profileId"`
}

// TrackView handles POST /track/view.
//
//	@Summary		Record a page view
//	@Description	Queue a page view event for asynchronous recording
//	@Tags			Analytics
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TrackViewRequest	true	"View event"
//	@Success		200		{object}	APIResponse			"Event accepted"
//	@Failure		400		{object}	APIResponse			"Invalid request data"
//	@Router			/track/view [post]
func (h *TrackHandler) TrackView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TrackViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProfileID == "" {
		writeError(w, "profileId is required", http.StatusBadRequest)
		return
	}

	h.recorder.SubmitPageView(req.ProfileID, extractEventMeta(r))
	writeJSON(w, nil, http.StatusOK)
}

// TrackClick handles POST /track/click.
//
//	@Summary		Record a link click
//	@Description	Queue a link click event for asynchronous recording
//	@Tags			Analytics
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TrackClickRequest	true	"Click event"
//	@Success		200		{object}	APIResponse			"Event accepted"
//	@Failure		400		{object}	APIResponse			"Invalid request data"
//	@Router			/track/click [post]
func (h *TrackHandler) TrackClick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TrackClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LinkID == "" || req.ProfileID == "" {
		writeError(w, "linkId and profileId are required", http.StatusBadRequest)
		return
	}

	h.recorder.SubmitLinkClick(req.LinkID, req.ProfileID, extractEventMeta(r))
	writeJSON(w, nil, http.StatusOK)
}

// extractEventMeta captures the client metadata from request headers. The IP
// is taken from proxy headers only; without a proxy in front there is no
// trustworthy client address, so the field stays empty rather than recording
// the connection peer.
func extractEventMeta(r *http.Request) analytics.EventMeta {
	meta := analytics.EventMeta{
		UserAgent: headerValue(r, "User-Agent"),
		Referrer:  headerValue(r, "Referer"),
		IPAddress: extractClientIP(r),
	}

	if country := r.Header.Get("X-Vercel-IP-Country"); country != "" {
		meta.Country = &country
	} else if country := r.Header.Get("CF-IPCountry"); country != "" {
		meta.Country = &country
	}
	if city := r.Header.Get("X-Vercel-IP-City"); city != "" {
		meta.City = &city
	}

	return meta
}

func extractClientIP(r *http.Request) *string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return &first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return &ip
	}
	return nil
}

func headerValue(r *http.Request, name string) *string {
	if v := r.Header.Get(name); v != "" {
		return &v
	}
	return nil
}
