package service

import (
	"LinkBio-Backend/internal/domain"
	"LinkBio-Backend/internal/repository"
	"LinkBio-Backend/pkg/validate"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidInput marks validation failures. The wrapped message is safe to
// show to the caller.
var ErrInvalidInput = errors.New("invalid input")

const maxProvisionAttempts = 3

// ProfileService holds the profile resolution, provisioning and dashboard
// mutation logic. Every mutation takes the caller's principal id explicitly;
// there is no ambient session state.
type ProfileService struct {
	storage repository.Storage
	log     *zap.Logger
}

func NewProfileService(storage repository.Storage, log *zap.Logger) *ProfileService {
	return &ProfileService{
		storage: storage,
		log:     log,
	}
}

// PublicProfile is a resolved public page: the profile plus its visible
// links in display order.
type PublicProfile struct {
	Profile *domain.Profile
	Links   []*domain.Link
}

// DashboardOverview is everything the dashboard shows for one owner.
type DashboardOverview struct {
	Profile     *domain.Profile
	Links       []*domain.Link
	TotalViews  int64
	TotalClicks int64
}

// UpdateProfileInput carries the dashboard profile form. Empty strings clear
// the corresponding optional column; an empty theme leaves the theme alone.
type UpdateProfileInput struct {
	DisplayName string
	Bio         string
	AvatarURL   string
	Theme       string
}

// AddLinkInput carries the dashboard add-link form.
type AddLinkInput struct {
	Title       string
	URL         string
	Description string
	Icon        string
}

// Resolve looks up a public profile by username. The input is lowercased
// first; the profile and its visible links are fetched concurrently since
// neither fetch depends on the other.
func (s *ProfileService) Resolve(ctx context.Context, username string) (*PublicProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	var (
		wg      sync.WaitGroup
		profile *domain.Profile
		links   []*domain.Link
		pErr    error
		lErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		profile, pErr = s.storage.GetProfileByUsername(ctx, username)
	}()
	go func() {
		defer wg.Done()
		links, lErr = s.storage.ListVisibleLinks(ctx, username)
	}()
	wg.Wait()

	if pErr != nil {
		return nil, pErr
	}
	if lErr != nil {
		return nil, fmt.Errorf("failed to resolve links: %w", lErr)
	}

	return &PublicProfile{Profile: profile, Links: links}, nil
}

// EnsureProfile returns the caller's profile, creating it on first dashboard
// access. The profile primary key is the caller id, which makes the path
// idempotent: a retry after a partial failure finds the existing row instead
// of inserting a duplicate.
func (s *ProfileService) EnsureProfile(ctx context.Context, principalID, email string) (*domain.Profile, error) {
	profile, err := s.storage.GetProfileByID(ctx, principalID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	base := synthesizeUsername(email, principalID)
	username := base

	for attempt := 0; attempt < maxProvisionAttempts; attempt++ {
		created, err := s.storage.CreateProfile(ctx, principalID, username)
		if err == nil {
			s.log.Info("provisioned profile",
				zap.String("profile_id", principalID),
				zap.String("username", username))
			return created, nil
		}
		if !errors.Is(err, repository.ErrUsernameTaken) {
			return nil, fmt.Errorf("failed to provision profile: %w", err)
		}

		// The unique violation may be our own id from a concurrent or
		// previously half-finished provisioning; re-read before assuming
		// the username collided.
		if existing, lookupErr := s.storage.GetProfileByID(ctx, principalID); lookupErr == nil {
			return existing, nil
		}

		username = suffixUsername(base)
	}

	return nil, fmt.Errorf("failed to provision profile after %d attempts", maxProvisionAttempts)
}

// Overview assembles the dashboard view: profile (provisioned if needed),
// all links, and aggregate view/click counts.
func (s *ProfileService) Overview(ctx context.Context, principalID, email string) (*DashboardOverview, error) {
	profile, err := s.EnsureProfile(ctx, principalID, email)
	if err != nil {
		return nil, err
	}

	links, err := s.storage.ListLinks(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	totalViews, err := s.storage.CountPageViews(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count page views: %w", err)
	}

	totalClicks, err := s.storage.CountLinkClicks(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count link clicks: %w", err)
	}

	return &DashboardOverview{
		Profile:     profile,
		Links:       links,
		TotalViews:  totalViews,
		TotalClicks: totalClicks,
	}, nil
}

// UpdateProfile validates and applies the profile form for the caller.
// The username is immutable and not part of the input.
func (s *ProfileService) UpdateProfile(ctx context.Context, ownerID string, input UpdateProfileInput) error {
	if len(input.DisplayName) > 50 {
		return fmt.Errorf("%w: display name must be at most 50 characters", ErrInvalidInput)
	}
	if len(input.Bio) > 200 {
		return fmt.Errorf("%w: bio must be at most 200 characters", ErrInvalidInput)
	}
	if input.AvatarURL != "" && !validate.URL(input.AvatarURL) {
		return fmt.Errorf("%w: avatar URL must be a valid http(s) URL", ErrInvalidInput)
	}

	upd := repository.ProfileUpdate{
		DisplayName: optional(input.DisplayName),
		Bio:         optional(input.Bio),
		AvatarURL:   optional(input.AvatarURL),
		Theme:       optional(input.Theme),
	}

	return s.storage.UpdateProfile(ctx, ownerID, upd)
}

// AddLink validates and creates a link for the caller. Position assignment
// happens at the storage boundary.
func (s *ProfileService) AddLink(ctx context.Context, ownerID string, input AddLinkInput) (*domain.Link, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" || len(input.Title) > 100 {
		return nil, fmt.Errorf("%w: title must be 1-100 characters", ErrInvalidInput)
	}
	if !validate.URL(input.URL) {
		return nil, fmt.Errorf("%w: url must be a valid http(s) URL", ErrInvalidInput)
	}
	if len(input.Description) > 200 {
		return nil, fmt.Errorf("%w: description must be at most 200 characters", ErrInvalidInput)
	}

	icon := input.Icon
	if icon == "" {
		icon = "lucide:link"
	}

	link := &domain.Link{
		ProfileID:   ownerID,
		Title:       input.Title,
		URL:         input.URL,
		Description: optional(input.Description),
		Icon:        &icon,
		IsVisible:   true,
	}

	if err := s.storage.CreateLink(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

// SetLinkVisibility toggles a link the caller owns.
func (s *ProfileService) SetLinkVisibility(ctx context.Context, ownerID, linkID string, visible bool) error {
	if linkID == "" {
		return fmt.Errorf("%w: link id is required", ErrInvalidInput)
	}
	return s.storage.SetLinkVisibility(ctx, linkID, ownerID, visible)
}

// DeleteLink removes a link the caller owns.
func (s *ProfileService) DeleteLink(ctx context.Context, ownerID, linkID string) error {
	if linkID == "" {
		return fmt.Errorf("%w: link id is required", ErrInvalidInput)
	}
	return s.storage.DeleteLink(ctx, linkID, ownerID)
}

// ReorderLinks rewrites positions 1..n following the given id order. Ids the
// caller does not own are ignored by the ownership filter.
func (s *ProfileService) ReorderLinks(ctx context.Context, ownerID string, linkIDs []string) error {
	if len(linkIDs) == 0 {
		return fmt.Errorf("%w: link ids are required", ErrInvalidInput)
	}
	return s.storage.ReorderLinks(ctx, ownerID, linkIDs)
}

// synthesizeUsername derives a default username from the principal's email
// local-part, falling back to the principal id, normalized through the same
// character filter as a public username.
func synthesizeUsername(email, principalID string) string {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}

	name := sanitizeUsername(strings.ToLower(local))
	if len(name) < validate.UsernameMinLen {
		id := strings.ReplaceAll(principalID, "-", "")
		if len(id) > 8 {
			id = id[:8]
		}
		name = sanitizeUsername("user" + strings.ToLower(id))
	}
	if len(name) > validate.UsernameMaxLen {
		name = name[:validate.UsernameMaxLen]
	}
	return name
}

// suffixUsername appends a short random suffix, keeping the result within
// the username length limit.
func suffixUsername(base string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	if len(base) > validate.UsernameMaxLen-5 {
		base = base[:validate.UsernameMaxLen-5]
	}
	return base + "-" + suffix
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' || c == '-' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
